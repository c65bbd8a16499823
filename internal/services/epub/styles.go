package epub

import (
	"fmt"
	"os"
)

const defaultCSS = `body {
  font-family: Georgia, 'Times New Roman', serif;
  font-size: 1em;
  line-height: 1.6;
  margin: 1em;
  text-align: justify;
}

h1, h2, h3, h4, h5, h6 {
  font-family: 'Helvetica Neue', Arial, sans-serif;
  font-weight: bold;
  line-height: 1.2;
  margin-top: 1.5em;
  margin-bottom: 0.5em;
  text-align: left;
}

h1 { font-size: 2em; }
h2 { font-size: 1.75em; }
h3 { font-size: 1.5em; }
h4 { font-size: 1.25em; }
h5 { font-size: 1.1em; }
h6 { font-size: 1em; }

p {
  margin: 0.5em 0 1em 0;
  text-indent: 1.5em;
}

p:first-of-type,
h1 + p, h2 + p, h3 + p, h4 + p, h5 + p, h6 + p {
  text-indent: 0;
}

blockquote {
  margin: 1em 2em;
  font-style: italic;
  border-left: 3px solid #ccc;
  padding-left: 1em;
}

code {
  font-family: 'Courier New', monospace;
  font-size: 0.9em;
  background-color: #f4f4f4;
  padding: 0.1em 0.3em;
}

pre {
  font-family: 'Courier New', monospace;
  font-size: 0.9em;
  background-color: #f4f4f4;
  padding: 1em;
  overflow-x: auto;
  white-space: pre-wrap;
}

ul, ol {
  margin: 1em 0;
  padding-left: 2em;
}

li {
  margin: 0.5em 0;
}

a {
  color: #0066cc;
  text-decoration: underline;
}

img {
  max-width: 100%;
  height: auto;
  display: block;
  margin: 1em auto;
}
`

const minimalCSS = `body {
  font-family: serif;
  font-size: 1em;
  line-height: 1.5;
  margin: 1em;
}

h1, h2, h3, h4, h5, h6 {
  font-family: sans-serif;
  margin-top: 1em;
  margin-bottom: 0.5em;
}

p {
  margin: 0.5em 0;
}

blockquote {
  margin: 1em 2em;
  font-style: italic;
}

code, pre {
  font-family: monospace;
}

a {
  color: blue;
}
`

const modernCSS = `body {
  font-family: 'Merriweather', Georgia, serif;
  font-size: 1em;
  font-weight: 300;
  line-height: 1.8;
  margin: 1.5em;
  color: #333;
  text-align: justify;
  hyphens: auto;
}

h1, h2, h3, h4, h5, h6 {
  font-family: 'Open Sans', 'Helvetica Neue', sans-serif;
  font-weight: 600;
  line-height: 1.3;
  margin-top: 2em;
  margin-bottom: 0.75em;
  color: #111;
  text-align: left;
}

h1 {
  font-size: 2.5em;
  font-weight: 700;
  border-bottom: 2px solid #e0e0e0;
  padding-bottom: 0.3em;
}

h2 { font-size: 2em; }
h3 { font-size: 1.5em; }
h4 { font-size: 1.25em; }

p {
  margin: 0 0 1.5em 0;
  text-indent: 0;
}

p + p {
  text-indent: 1.5em;
}

blockquote {
  margin: 2em 0;
  padding: 1em 2em;
  border-left: 4px solid #4a90e2;
  font-style: italic;
  font-size: 1.05em;
}

code {
  font-family: 'Consolas', 'Monaco', monospace;
  font-size: 0.85em;
  background: #f5f5f5;
  padding: 0.2em 0.4em;
}

pre {
  font-family: 'Consolas', 'Monaco', monospace;
  font-size: 0.85em;
  background: #f5f5f5;
  padding: 1em;
  overflow-x: auto;
  white-space: pre-wrap;
}

img {
  max-width: 100%;
  height: auto;
  display: block;
  margin: 2em auto;
}
`

var builtinStyles = map[string]string{
	"default": defaultCSS,
	"minimal": minimalCSS,
	"modern":  modernCSS,
}

// ResolveStyle returns the CSS for the configured style. A non-empty
// stylesheet path wins over the named profile; an unknown profile name
// falls back to the default.
func ResolveStyle(styleName, stylesheetPath string) (name, css string, err error) {
	if stylesheetPath != "" {
		data, err := os.ReadFile(stylesheetPath)
		if err != nil {
			return "", "", fmt.Errorf("reading stylesheet %s: %w", stylesheetPath, err)
		}
		return "custom", string(data), nil
	}

	if css, ok := builtinStyles[styleName]; ok {
		return styleName, css, nil
	}
	return "default", defaultCSS, nil
}
