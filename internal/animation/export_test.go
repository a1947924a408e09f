package animation

// SetBeforeCopy installs fn to run between arrival detection and the
// snapshot copy.
func SetBeforeCopy(d *Driver, fn func()) {
	d.beforeCopy = fn
}
