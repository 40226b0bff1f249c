// Package paper turns an arXiv paper into a podcast script: it fetches the
// paper's metadata and body (ar5iv HTML with an abstract-only fallback),
// fills the dialogue prompt, and asks a language model for the script.
package paper
