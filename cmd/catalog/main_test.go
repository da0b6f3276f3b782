package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	require.NoError(t, root.Execute(), out.String())
	return out.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestSchemaCommand(t *testing.T) {
	out := execute(t, "schema")

	require.Contains(t, out, "type Query {\n")
	require.Contains(t, out, "  widget(id: ID!): Widget\n")
	require.Contains(t, out, "  books: [Book]\n")
	require.Contains(t, out, "  owner: Owner\n")
	require.Contains(t, out, "  author: Author\n")
	require.NotContains(t, out, "__Type")
}

func TestSchemaCommandJSON(t *testing.T) {
	out := execute(t, "schema", "--json")
	require.Contains(t, out, `"__schema"`)
	require.Contains(t, out, `"name": "Widget"`)
}

func TestBundleCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{
		"name": "widgets-app",
		"webServer": {"protocol": "http", "host": "localhost", "port": 8080, "folder": "dist"}
	}`)
	writeFile(t, filepath.Join(dir, "src", "www", "index.html"), "<html><body><div id=\"root\"></div></body></html>")
	writeFile(t, filepath.Join(dir, "src", "www", "js", "widgets.js"), "export default []")
	writeFile(t, filepath.Join(dir, "src", "www", "css", "site.scss"), "body { margin: 0 }")

	out := execute(t, "bundle", "--dir", dir, "widgets", "../css/site.scss")

	require.Contains(t, out, "app: ./src/www/js/app.js -> http://localhost:8080/app.js\n")
	require.Contains(t, out, "devtool: source-map\n")
	require.Contains(t, out, "provide Promise: exports?global.Promise!es6-promise\n"+
		"provide fetch: imports?this=>global!exports?global.fetch!whatwg-fetch\n"+
		"provide window.fetch: imports?this=>global!exports?global.fetch!whatwg-fetch\n")
	require.Contains(t, out, "widgets: "+filepath.Join(dir, "src", "www", "js", "widgets.js")+" [javascript] babel-loader\n")
	require.Contains(t, out, "[scss] sass > postcss > css > style\n")

	index, err := os.ReadFile(filepath.Join(dir, "dist", "index.html"))
	require.NoError(t, err)
	require.Equal(t, `<html><body><div id="root"></div><script type="text/javascript" src="http://localhost:8080/app.js"></script></body></html>`, string(index))
}

func TestBundleCommandUnresolved(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "www", "index.html"), "<html></html>")

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--log-level", "error", "bundle", "--dir", dir, "missing"})
	require.EqualError(t, root.Execute(), `can not resolve module "missing"`)

	_, err := os.Stat(filepath.Join(dir, "dist", "index.html"))
	require.NoError(t, err, "falls back to the configured web server folder")
}
