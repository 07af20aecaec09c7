// Package markdown loads blog posts from disk: it splits and decodes the
// front matter block, locates fenced code blocks in the body, and renders
// bodies to HTML for previews.
package markdown
