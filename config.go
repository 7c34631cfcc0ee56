package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/contrib/renders/multitemplate"
	"github.com/gin-gonic/gin"

	"github.com/kmeaw/huffkit/huffman"
)

type Config struct {
	ListenAddress string `json:"listen_address"`
	PacketAddress string `json:"packet_address"`
	PacketSize    int    `json:"packet_size"`
	IRCServer     string `json:"irc_server,omitempty"`
	IRCNick       string `json:"irc_nick,omitempty"`
	IRCChannel    string `json:"irc_channel,omitempty"`
	IRCPassword   string `json:"irc_password,omitempty"`
	DatabaseURL   string `json:"database_url,omitempty"`
	LogLevel      string `json:"log_level,omitempty"`
	SampleText    string `json:"sample_text"`
	Script        string `json:"-"`

	configDir string
	assetsDir string
}

func (c *Config) SetDefaultScript() {
	c.Script = `
text = sample
t = build(text)
bits = encode(t, text)
printf("%d symbols, %d bits\n", len(text), len(bits))

for p in pairs(t) {
  printf("%q -> %s\n", p.Symbol, p.Prefix)
}

back = decode(t, bits)
if back != text {
  printf("round trip mismatch: %q\n", back)
}

printf("%s", tree(text))
`
}

func (c *Config) SetDefaults() {
	c.ListenAddress = "localhost:8666"
	c.PacketAddress = "127.0.0.1:10666"
	c.PacketSize = 512

	c.IRCServer = "irc.libera.chat:6697"
	c.IRCNick = "huffkit"
	c.IRCChannel = "huffkit"
	c.IRCPassword = ""

	c.DatabaseURL = ""
	c.LogLevel = "info"
	c.SampleText = "CITRONTRESCONTENT"
}

// Init points the config at dir, or at the user config directory when dir is
// empty, and creates it.
func (c *Config) Init(dir string) error {
	if dir == "" {
		cfgdir, err := os.UserConfigDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(cfgdir, "huffkit")
	}

	c.configDir = dir
	c.assetsDir = executableDir()

	err := os.MkdirAll(c.configDir, 0777)
	if err != nil && !errors.Is(err, fs.ErrExist) {
		return err
	}

	return nil
}

func (c *Config) Dir() string {
	return c.configDir
}

func (c *Config) Load() error {
	for _, fn := range []func() error{c.LoadConfig, c.LoadScript} {
		err := fn()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) LoadConfig() error {
	c.SetDefaults()

	f, err := os.Open(filepath.Join(c.configDir, "config.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	err = dec.Decode(c)
	if err != nil {
		return fmt.Errorf("cannot parse %q: %w", f.Name(), err)
	}

	if err := checkPacketSize(c.PacketSize); err != nil {
		return fmt.Errorf("packet_size: %w", err)
	}

	return nil
}

func (c *Config) LoadScript() error {
	b, err := os.ReadFile(filepath.Join(c.configDir, "script.anko"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.SetDefaultScript()
			return nil
		}

		return err
	}

	c.Script = string(b)
	return nil
}

func (c Config) Save() error {
	for _, fn := range []func() error{c.SaveConfig, c.SaveScript} {
		err := fn()
		if err != nil {
			return err
		}
	}
	return nil
}

func (c Config) SaveConfig() error {
	f, err := os.OpenFile(filepath.Join(c.configDir, "config.json"), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "    ")
	err = enc.Encode(c)
	if err != nil {
		return err
	}

	return nil
}

func (c Config) SaveScript() error {
	return os.WriteFile(filepath.Join(c.configDir, "script.anko"), []byte(c.Script), 0666)
}

// executableDir is the directory of the running binary when templates ship
// next to it. Otherwise assets are looked up in the working directory.
func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	dir := filepath.Dir(exe)
	if st, err := os.Stat(filepath.Join(dir, "templates")); err != nil || !st.IsDir() {
		return ""
	}
	return dir
}

// ReadDir lists the regular files of dirname, preferring copies under the
// config directory over the ones shipped with the executable (or, failing
// that, found relative to the working directory).
func (c Config) ReadDir(dirname string) ([]string, error) {
	locals := make(map[string]bool)
	entries, err := os.ReadDir(filepath.Join(c.configDir, dirname))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	result := make([]string, 0, len(entries))

	skip := func(entry fs.DirEntry) bool {
		if !entry.Type().IsRegular() {
			return true
		}

		name := entry.Name()
		return strings.HasSuffix(name, ".swp") || strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")
	}

	for _, entry := range entries {
		if skip(entry) {
			continue
		}

		locals[entry.Name()] = true
		result = append(result, filepath.Join(c.configDir, dirname, entry.Name()))
	}

	shipped := filepath.Join(c.assetsDir, dirname)
	entries, err = os.ReadDir(shipped)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	for _, entry := range entries {
		if skip(entry) || locals[entry.Name()] {
			continue
		}

		result = append(result, filepath.Join(shipped, entry.Name()))
	}

	return result, nil
}

// InitTemplates loads templates/*.html into r. Files starting with "_" are
// partials made available to every page.
func (c Config) InitTemplates(r *gin.Engine) error {
	var err error
	var data []byte
	var tmpl *template.Template

	var names, pnames []string

	template_files, err := c.ReadDir("templates")
	if err != nil {
		return err
	}
	for _, name := range template_files {
		if strings.HasPrefix(filepath.Base(name), "_") {
			pnames = append(pnames, name)
		} else {
			names = append(names, name)
		}
	}

	funcs := template.FuncMap{
		"join":  strings.Join,
		"label": huffman.SymbolLabel,
	}

	render := multitemplate.New()
	ptmpls := make(map[string]*template.Template)
	for _, pname := range pnames {
		if data, err = os.ReadFile(pname); err != nil {
			return fmt.Errorf("cannot open partial %q: %w", pname, err)
		}
		pname = strings.TrimSuffix(filepath.Base(pname), ".html")
		if tmpl, err = template.New(pname).Funcs(funcs).Parse(string(data)); err != nil {
			return fmt.Errorf("cannot parse template %q: %w", pname, err)
		}
		ptmpls[pname] = tmpl
	}
	for _, name := range names {
		if data, err = os.ReadFile(name); err != nil {
			return fmt.Errorf("cannot open template %q: %w", name, err)
		}
		if tmpl, err = template.New(filepath.Base(name)).Funcs(funcs).Parse(string(data)); err != nil {
			return fmt.Errorf("cannot parse template %q: %w", name, err)
		}
		for pname, ptmpl := range ptmpls {
			if _, err = tmpl.AddParseTree(pname, ptmpl.Tree); err != nil {
				return fmt.Errorf("cannot add partial %q to %q: %w", pname, name, err)
			}
		}
		render.Add(filepath.Base(name), tmpl)
	}
	r.HTMLRender = render

	return nil
}

// vim: ai:ts=8:sw=8:noet:syntax=go
