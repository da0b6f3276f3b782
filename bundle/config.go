// Package bundle describes how the client application is bundled: entry
// points, module resolution, per file type transform rules and where the
// output is written and served from.
package bundle

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"go.appointy.com/catalog/config"
)

// Rule selects the loaders used for the files whose path matches Test.
type Rule struct {
	Name    string
	Test    *regexp.Regexp
	Exclude []*regexp.Regexp
	// Loaders are applied right to left.
	Loaders []string
	Options map[string]interface{}
}

// Matches reports whether file is handled by the rule.
func (r *Rule) Matches(file string) bool {
	if !r.Test.MatchString(file) {
		return false
	}
	for _, ex := range r.Exclude {
		if ex.MatchString(file) {
			return false
		}
	}
	return true
}

// Output tells where bundles are written and the URL they are served from.
type Output struct {
	Path       string
	PublicPath string
	Filename   string
}

// Config is the build configuration of the client bundles.
type Config struct {
	// Entry maps bundle names to their entry module.
	Entry map[string]string
	// Extensions are tried left to right when resolving a module request.
	Extensions []string
	// Root is the folder module requests are resolved against.
	Root     string
	Rules    []*Rule
	Template string
	// Devtool names the kind of source map emitted next to each bundle.
	Devtool string
	// Provide maps free identifiers to the module providing them.
	Provide map[string]string
	Output  Output
}

// New returns the bundle configuration of the project rooted at dir, served
// by the given web server. A relative output folder is taken from dir.
func New(dir string, ws config.WebServerConfig) *Config {
	index := filepath.Join(dir, "src", "www", "index.html")
	out := ws.Folder
	if !filepath.IsAbs(out) {
		out = filepath.Join(dir, out)
	}

	return &Config{
		Entry:      map[string]string{"app": "./src/www/js/app.js"},
		Extensions: []string{"", ".js", ".json"},
		Root:       filepath.Join(dir, "src", "www", "js"),
		Rules: []*Rule{
			{
				Name:    "javascript",
				Test:    regexp.MustCompile(`\.js$`),
				Exclude: []*regexp.Regexp{regexp.MustCompile(`node_modules`)},
				Loaders: []string{"babel-loader"},
				Options: map[string]interface{}{
					"passPerPreset": true,
					"presets":       []string{"react", "es2015", "stage-0"},
				},
			},
			{
				Name:    "json",
				Test:    regexp.MustCompile(`\.json$`),
				Loaders: []string{"json"},
			},
			{
				Name:    "html",
				Test:    regexp.MustCompile(`\.html$`),
				Exclude: []*regexp.Regexp{regexp.MustCompile("^" + regexp.QuoteMeta(index) + "$")},
				Loaders: []string{"html"},
			},
			{
				Name:    "assets",
				Test:    regexp.MustCompile(`\.(png|jpe?g|gif|svg|woff|woff2|ttf|eot|ico)$`),
				Loaders: []string{"file?name=assets/[name].[hash].[ext]"},
			},
			{
				Name:    "scss",
				Test:    regexp.MustCompile(`\.scss$`),
				Loaders: []string{"style", "css", "postcss", "sass"},
			},
		},
		Template: "./src/www/index.html",
		Devtool:  "source-map",
		Provide: map[string]string{
			"Promise":      "exports?global.Promise!es6-promise",
			"fetch":        "imports?this=>global!exports?global.fetch!whatwg-fetch",
			"window.fetch": "imports?this=>global!exports?global.fetch!whatwg-fetch",
		},
		Output: Output{
			Path:       out,
			PublicPath: PublicPath(ws),
			Filename:   "[name].js",
		},
	}
}

// PublicPath is the URL prefix the browser loads bundles from.
func PublicPath(ws config.WebServerConfig) string {
	return fmt.Sprintf("%s://%s:%d/", ws.Protocol, ws.Host, ws.Port)
}

// LoadWebServer reads the webServer section of a package.json file.
func LoadWebServer(packageJSON string) (config.WebServerConfig, error) {
	v := viper.New()
	v.SetConfigFile(packageJSON)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return config.WebServerConfig{}, fmt.Errorf("reading %s: %w", packageJSON, err)
	}

	ws := config.DefaultConfig().WebServer
	if !v.IsSet("webServer") {
		return ws, fmt.Errorf("%s has no webServer section", packageJSON)
	}
	if err := v.UnmarshalKey("webServer", &ws); err != nil {
		return ws, fmt.Errorf("decoding webServer section: %w", err)
	}
	return ws, nil
}

// Match returns the first rule handling file.
func (c *Config) Match(file string) (*Rule, bool) {
	for _, r := range c.Rules {
		if r.Matches(file) {
			return r, true
		}
	}
	return nil, false
}

// Loaders returns the loaders for file in the order they run.
func (c *Config) Loaders(file string) []string {
	r, ok := c.Match(file)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(r.Loaders))
	for i := len(r.Loaders) - 1; i >= 0; i-- {
		out = append(out, r.Loaders[i])
	}
	return out
}

// Resolve finds the file behind a module request by trying every extension
// in order. exists reports whether a path is a file.
func (c *Config) Resolve(request string, exists func(string) bool) (string, bool) {
	base := request
	if !filepath.IsAbs(base) {
		base = filepath.Join(c.Root, request)
	}
	for _, ext := range c.Extensions {
		if p := base + ext; exists(p) {
			return p, true
		}
	}
	return "", false
}

// EntryNames returns the bundle names, sorted.
func (c *Config) EntryNames() []string {
	names := make([]string, 0, len(c.Entry))
	for name := range c.Entry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ProvidedNames returns the identifiers of Provide, sorted.
func (c *Config) ProvidedNames() []string {
	names := make([]string, 0, len(c.Provide))
	for name := range c.Provide {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OutputName returns the file name of the bundle built for entry.
func (c *Config) OutputName(entry string) string {
	return strings.ReplaceAll(c.Output.Filename, "[name]", entry)
}

// ScriptTags returns the script elements loading every bundle.
func (c *Config) ScriptTags() string {
	var b strings.Builder
	for _, name := range c.EntryNames() {
		fmt.Fprintf(&b, `<script type="text/javascript" src="%s%s"></script>`, c.Output.PublicPath, c.OutputName(name))
	}
	return b.String()
}

// InjectScripts adds the bundle script elements to an html page, before the
// closing body tag when there is one.
func (c *Config) InjectScripts(html string) string {
	tags := c.ScriptTags()
	if i := strings.LastIndex(strings.ToLower(html), "</body>"); i >= 0 {
		return html[:i] + tags + html[i:]
	}
	return html + tags
}

// AssetName is the output name of an image or font file, relative to the
// output folder.
func AssetName(name, hash, ext string) string {
	return path.Join("assets", fmt.Sprintf("%s.%s.%s", name, hash, strings.TrimPrefix(ext, ".")))
}
