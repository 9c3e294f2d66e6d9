package domain

// Viewer is the resolved identity behind a connection. A zero ID means the
// connection is anonymous: it may observe chat but cannot send messages,
// send gifts or earn points.
type Viewer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Anonymous reports whether the viewer has no resolved identity.
func (v Viewer) Anonymous() bool {
	return v.ID == ""
}
