package components

// FullTitle is the document title Layout would render for meta.
func FullTitle(appName string, meta PageMeta) string {
	return meta.fullTitle(appName)
}
