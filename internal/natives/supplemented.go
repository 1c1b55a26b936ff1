package natives

// InstallSupplemented registers the domain-stack natives of SPEC_FULL §3
// (uuid, the db* family, the ws* family) in addition to the core two.
// Kept separate from InstallCore; vm.New calls both for every VM, so the
// network/database surface is always installed.
func InstallSupplemented(h Host) {
	installUUID(h)
	installDB(h)
	installWS(h)
}
