package types

// Fragment is one named JSON unit as stored in the fragment directory.
// Description lives in a sidecar file on disk but is carried here as a field.
type Fragment struct {
	Name        string `json:"name"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

// FragmentPreview adds what a listing shows next to a fragment.
type FragmentPreview struct {
	Fragment
	Servers []string `json:"servers"`
	Valid   bool     `json:"valid"`
}
