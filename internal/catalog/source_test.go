package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

const comuniJSON = `[
  {"id": "settimo", "nome": "Settimo Torinese", "categorie": ["Alimentari", "Servizi"]},
  {"id": "", "nome": "senza id", "categorie": []},
  {"id": "volpiano", "nome": "<b>Volpiano</b>", "categorie": ["Alimentari"]}
]`

const settimoShopsJSON = `[
  {
    "id": "panificio-rossi",
    "nome": "Panificio Rossi",
    "descrizione": "Pane <script>alert(1)</script>fresco",
    "categoria": "Alimentari",
    "indirizzo": "Via Italia 1",
    "orari": "8-13",
    "telefono": "+39 011 1234567",
    "email": "info@rossi.it",
    "prodotti": [
      {"nome": "Pane", "unita": "1 kg", "prezzo": 3.5},
      {"nome": "Focaccia", "unita": "pezzo", "prezzo": "2,80"},
      {"nome": "Assaggio", "unita": "", "prezzo": null},
      {"nome": "Sconto", "unita": "", "prezzo": -4}
    ]
  },
  {"id": "ferramenta-bianchi", "nome": "Ferramenta Bianchi", "categoria": "Servizi", "whatsapp": "+39 333 0000000"}
]`

const volpianoShopsYAML = `
- id: macelleria-verdi
  nome: Macelleria Verdi
  categoria: Alimentari
  telefono: "+39 011 7654321"
  prodotti:
    - nome: Salsiccia
      unita: 1 kg
      prezzo: 12.9
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"comuni.json":         {Data: []byte(comuniJSON)},
		"shops/settimo.json":  {Data: []byte(settimoShopsJSON)},
		"shops/volpiano.yaml": {Data: []byte(volpianoShopsYAML)},
	}
}

func TestFileSourceMunicipalities(t *testing.T) {
	t.Parallel()

	src := NewFileSource(testFS())
	list, err := src.Municipalities(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2, "entries without id are dropped")
	require.Equal(t, "settimo", list[0].ID)
	require.Equal(t, []string{"Alimentari", "Servizi"}, list[0].Categories)
	require.Equal(t, "Volpiano", list[1].Name, "markup is stripped from names")
}

func TestFileSourceShopsNormalizesFields(t *testing.T) {
	t.Parallel()

	src := NewFileSource(testFS())
	shops, err := src.Shops(context.Background(), "settimo")
	require.NoError(t, err)
	require.Len(t, shops, 2)

	rossi := shops[0]
	require.Equal(t, "Pane fresco", rossi.Description)
	require.Len(t, rossi.Products, 4)
	require.InDelta(t, 3.5, rossi.Products[0].Price.Float(), 1e-9)
	require.InDelta(t, 2.8, rossi.Products[1].Price.Float(), 1e-9)
	require.Zero(t, rossi.Products[2].Price.Float(), "null price decodes to zero")
	require.Zero(t, rossi.Products[3].Price.Float(), "negative prices are clamped")

	bianchi := shops[1]
	require.Empty(t, bianchi.Description)
	require.Empty(t, bianchi.Products)
	require.Equal(t, "+39 333 0000000", bianchi.ContactNumber())
	require.Equal(t, "+39 011 1234567", rossi.ContactNumber(), "phone is the fallback contact")
}

func TestFileSourceYAMLFallback(t *testing.T) {
	t.Parallel()

	src := NewFileSource(testFS())
	shops, err := src.Shops(context.Background(), "volpiano")
	require.NoError(t, err)
	require.Len(t, shops, 1)
	require.Equal(t, "Macelleria Verdi", shops[0].Name)
	require.InDelta(t, 12.9, shops[0].Products[0].Price.Float(), 1e-9)
}

func TestFileSourceErrors(t *testing.T) {
	t.Parallel()

	src := NewFileSource(testFS())
	_, err := src.Shops(context.Background(), "chivasso")
	require.True(t, errors.Is(err, ErrNotFound), "missing file maps to ErrNotFound, got %v", err)

	_, err = src.Shops(context.Background(), "../comuni")
	require.True(t, errors.Is(err, ErrInvalidID), "path escapes are rejected, got %v", err)

	broken := NewFileSource(fstest.MapFS{"comuni.json": {Data: []byte("{not json")}})
	_, err = broken.Municipalities(context.Background())
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Municipalities(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestHTTPSource(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/data/comuni.json", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(comuniJSON))
	})
	mux.HandleFunc("/data/shops/settimo.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(settimoShopsJSON))
	})
	mux.HandleFunc("/data/shops/rotto.json", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	src := NewHTTPSource(ts.URL+"/data/", ts.Client())

	list, err := src.Municipalities(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	shops, err := src.Shops(context.Background(), "settimo")
	require.NoError(t, err)
	require.Equal(t, "panificio-rossi", shops[0].ID)

	_, err = src.Shops(context.Background(), "assente")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = src.Shops(context.Background(), "rotto")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
