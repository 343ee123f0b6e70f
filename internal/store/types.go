package store

// Cookie is a persisted auth cookie, keyed by the backend URL it was set for.
type Cookie struct {
	URL      string
	Name     string
	Value    string
	Path     string
	Domain   string
	Expires  int64 // unix ms, 0 for session cookies
	Secure   bool
	HTTPOnly bool
}

// Preference keys.
const (
	PrefLastConversation = "last_conversation"
	PrefLastEmail        = "last_email"
)
