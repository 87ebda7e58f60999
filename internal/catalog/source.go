package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

const (
	municipalitiesResource = "comuni"
	shopsDir               = "shops"
	tracerName             = "settimohub.it/hub-web/internal/catalog"
)

var (
	// ErrNotFound is returned when a resource does not exist in the source.
	ErrNotFound = errors.New("catalog: not found")
	// ErrInvalidID is returned for identifiers that cannot name a resource.
	ErrInvalidID = errors.New("catalog: invalid id")
)

// Source loads municipalities and their shop lists.
type Source interface {
	Municipalities(ctx context.Context) ([]Municipality, error)
	Shops(ctx context.Context, municipalityID string) ([]Shop, error)
}

// FileSource reads comuni.json and shops/<id>.json from a file system.
// A .yaml file is read when the .json sibling is missing.
type FileSource struct {
	fsys fs.FS
}

// NewFileSource returns a Source backed by fsys.
func NewFileSource(fsys fs.FS) *FileSource {
	return &FileSource{fsys: fsys}
}

// Municipalities implements Source.
func (s *FileSource) Municipalities(ctx context.Context) ([]Municipality, error) {
	ctx, span := startSpan(ctx, "catalog.FileSource.Municipalities")
	defer span.End()

	var list []Municipality
	if err := s.decode(ctx, municipalitiesResource, &list); err != nil {
		recordError(span, err)
		return nil, err
	}
	return NormalizeMunicipalities(list), nil
}

// Shops implements Source.
func (s *FileSource) Shops(ctx context.Context, municipalityID string) ([]Shop, error) {
	ctx, span := startSpan(ctx, "catalog.FileSource.Shops", attribute.String("municipality.id", municipalityID))
	defer span.End()

	id, err := resourceID(municipalityID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	var list []Shop
	if err := s.decode(ctx, path.Join(shopsDir, id), &list); err != nil {
		recordError(span, err)
		return nil, err
	}
	return NormalizeShops(list), nil
}

func (s *FileSource) decode(ctx context.Context, name string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.fsys == nil {
		return fmt.Errorf("catalog: file source not configured")
	}
	raw, err := fs.ReadFile(s.fsys, name+".json")
	if err == nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("catalog: decode %s.json: %w", name, err)
		}
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("catalog: read %s.json: %w", name, err)
	}
	raw, err = fs.ReadFile(s.fsys, name+".yaml")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("catalog: read %s.yaml: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("catalog: decode %s.yaml: %w", name, err)
	}
	return nil
}

// resourceID rejects ids that would escape the shops directory.
func resourceID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || strings.Contains(id, "..") || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return id, nil
}

var strictPolicy = bluemonday.StrictPolicy()

// plainText strips markup from values that used to be injected as raw HTML.
func plainText(s string) string {
	if s == "" {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// NormalizeMunicipalities strips markup from names and labels and drops empty ids.
func NormalizeMunicipalities(list []Municipality) []Municipality {
	out := make([]Municipality, 0, len(list))
	for _, m := range list {
		if strings.TrimSpace(m.ID) == "" {
			continue
		}
		cats := make([]string, 0, len(m.Categories))
		for _, c := range m.Categories {
			cats = append(cats, plainText(c))
		}
		out = append(out, Municipality{
			ID:         strings.TrimSpace(m.ID),
			Name:       plainText(m.Name),
			Categories: cats,
		})
	}
	return out
}

// NormalizeShops strips markup from every text field and clamps prices.
func NormalizeShops(list []Shop) []Shop {
	out := make([]Shop, 0, len(list))
	for _, s := range list {
		products := make([]Product, 0, len(s.Products))
		for _, p := range s.Products {
			price := p.Price
			if price < 0 {
				price = 0
			}
			products = append(products, Product{
				Name:  plainText(p.Name),
				Unit:  plainText(p.Unit),
				Price: price,
			})
		}
		out = append(out, Shop{
			ID:          strings.TrimSpace(s.ID),
			Name:        plainText(s.Name),
			Description: plainText(s.Description),
			Category:    plainText(s.Category),
			Address:     plainText(s.Address),
			Hours:       plainText(s.Hours),
			Phone:       plainText(s.Phone),
			Email:       plainText(s.Email),
			WhatsApp:    plainText(s.WhatsApp),
			Products:    products,
		})
	}
	return out
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

func recordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
