// Secrev is a CLI that runs an AI security review over a codebase.
//
// It walks a directory tree, filters files by extension and path, packs
// their contents into size-bounded chunks, submits each chunk to an LLM
// provider with a security-review instruction, and aggregates the
// structured findings into Markdown and plain-text reports.
//
// Usage:
//
//	secrev scan -d ./myproject             # scan a directory
//	secrev scan -d . --provider anthropic  # choose the provider
//	secrev scan -d . -y                    # skip the interactive review
//	secrev models doctor                   # validate credentials
//
// See https://github.com/401-Nick/SecRev for full documentation.
package main
