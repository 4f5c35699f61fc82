package event

// Collaborator notifications. Emitted during a frame, dispatched at the
// start of the next one.

type SceneLoaded struct {
	Name     string
	Path     string
	Entities int
}

type SceneUnloaded struct {
	Name     string
	Entities int
}

type AssetsReloaded struct {
	Path   string
	Assets int
}

type ScriptReloaded struct {
	Path string
}

// InstancesTruncated is emitted when the visible instance count exceeds the
// instance buffer cap.
type InstancesTruncated struct {
	Visible int
	Cap     int
}
