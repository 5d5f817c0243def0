package driven

// TemplateStore loads query templates for the lookup tools.
// A template is a fmt format string with exactly one %s verb that receives
// the caller-supplied identifier.
type TemplateStore interface {
	// Load returns the template for the named tool.
	Load(name string) (string, error)

	// Dir returns the directory holding user-editable templates.
	Dir() string
}
