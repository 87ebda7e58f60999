package links

import (
	"net/url"
	"strings"
	"unicode"
)

const (
	// DefaultMessagingBase is the WhatsApp click-to-chat host.
	DefaultMessagingBase = "https://wa.me"
	// DefaultMapsSearch is the Google Maps search endpoint.
	DefaultMapsSearch = "https://www.google.com/maps/search/"
	// DefaultGreeting is used when a messaging link is built without a message.
	DefaultGreeting = "Ciao! Ti contatto da Settimo Hub 👋"
)

// Builder produces outbound contact links. The zero value uses the default hosts.
type Builder struct {
	MessagingBase string
	MapsSearch    string
	Greeting      string
}

var defaultBuilder = Builder{}

// Messaging builds a deep link with the default builder.
func Messaging(phone, message string) string {
	return defaultBuilder.Messaging(phone, message)
}

// Map builds a map search link with the default builder.
func Map(address string) string {
	return defaultBuilder.Map(address)
}

// Messaging returns https://<service>/<number>?text=<message>. The phone number loses
// every whitespace rune and one leading '+'; it is not validated otherwise.
func (b Builder) Messaging(phone, message string) string {
	number := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, phone)
	number = strings.TrimPrefix(number, "+")
	if message == "" {
		message = b.greeting()
	}
	base := strings.TrimRight(firstNonEmpty(b.MessagingBase, DefaultMessagingBase), "/")
	return base + "/" + number + "?text=" + EncodeComponent(message)
}

// Map returns a search link for address; an empty address yields an empty query.
func (b Builder) Map(address string) string {
	base := firstNonEmpty(b.MapsSearch, DefaultMapsSearch)
	return base + "?api=1&query=" + EncodeComponent(address)
}

func (b Builder) greeting() string {
	return firstNonEmpty(b.Greeting, DefaultGreeting)
}

// EncodeComponent escapes s the way browsers' encodeURIComponent does:
// spaces become %20 and the marks !'()* stay literal.
func EncodeComponent(s string) string {
	escaped := url.QueryEscape(s)
	return componentReplacer.Replace(escaped)
}

var componentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
