package flags

// UserFlags appends "-I dir" for each include dir and "-isystem dir" for
// each system include dir to base, then absolutizes the result against
// configDir. base is not modified.
func UserFlags(base, includeDirs, systemIncludeDirs []string, configDir string) []string {
	out := make([]string, 0, len(base)+2*(len(includeDirs)+len(systemIncludeDirs)))
	out = append(out, base...)
	for _, dir := range includeDirs {
		out = append(out, "-I", dir)
	}
	for _, dir := range systemIncludeDirs {
		out = append(out, "-isystem", dir)
	}
	return Absolutize(out, configDir)
}
