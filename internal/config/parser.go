package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/ffsetup/internal/archive"
	"github.com/ZebulonRouseFrantzich/ffsetup/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// DefaultParseTimeout bounds config execution when ctx has no deadline.
const DefaultParseTimeout = 5 * time.Second

// Parser represents a Lua config parser with platform detection.
type Parser struct {
	detector platform.Detector
	logger   Logger
}

// NewParser creates a new config parser with the given platform detector.
// A nil detector parses without a platform table and with non-Windows
// defaults.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector, logger: defaultLogger()}
}

// WithLogger sets the logger used by the parser.
func (p *Parser) WithLogger(logger Logger) *Parser {
	if logger == nil {
		logger = defaultLogger()
	}
	p.logger = logger
	return p
}

// Load reads the config at path. An empty path selects FileName in Dir.
// A missing file is not an error: the platform defaults are returned.
func (p *Parser) Load(ctx context.Context, path string) (*Config, error) {
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, FileName)
	}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}
		p.logger.Debug("config file not found, using defaults", "path", path)
		info, err := p.detect(ctx)
		if err != nil {
			return nil, err
		}
		return Default(info), nil
	}

	return p.ParseFile(ctx, path)
}

// ParseFile parses the config file at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}
	if fi.Size() > MaxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%s is %d bytes, maximum is %d", path, fi.Size(), MaxConfigSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	p.logger.Debug("parsing config", "path", path, "bytes", len(data))
	return p.ParseString(ctx, string(data))
}

// ParseString parses a Lua config from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultParseTimeout)
		defer cancel()
	}

	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	info, err := p.detect(ctx)
	if err != nil {
		return nil, err
	}
	if info != nil {
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("config execution aborted: %w", ctxErr)
		}
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	cfg, err := extractConfig(L, Default(info))
	if err != nil {
		return nil, err
	}

	p.logger.Debug("config parsed", "install_dir", cfg.InstallDir, "layout", cfg.Layout.String())
	return cfg, nil
}

func (p *Parser) detect(ctx context.Context) (*platform.Info, error) {
	if p.detector == nil {
		return nil, nil
	}
	info, err := p.detector.Detect(ctx)
	if err != nil {
		return nil, fmt.Errorf("platform detection failed: %w", err)
	}
	return info, nil
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig overlays the global ffsetup table onto cfg. A config without
// the table leaves cfg unchanged.
func extractConfig(L *lua.LState, cfg *Config) (*Config, error) {
	global := L.GetGlobal(luaGlobalFFsetup)
	switch global.Type() {
	case lua.LTNil:
		return cfg, validate(cfg)
	case lua.LTTable:
	default:
		return nil, &ParseError{
			Message: "invalid 'ffsetup' table",
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}
	table := global.(*lua.LTable)

	r := fieldReader{table: table}
	r.path(luaFieldInstallDir, &cfg.InstallDir)
	r.str(luaFieldURL, &cfg.URL)
	var layout string
	if r.str(luaFieldLayout, &layout) {
		l, err := archive.ParseLayout(layout)
		if err != nil && r.err == nil {
			r.err = &ValidationError{Field: luaFieldLayout, Message: err.Error()}
		}
		cfg.Layout = l
	}
	r.str(luaFieldSuffix, &cfg.Suffix)
	r.boolean(luaFieldVerify, &cfg.VerifyChecksum)
	r.str(luaFieldChecksumURL, &cfg.ChecksumURL)
	r.str(luaFieldSignatureURL, &cfg.SignatureURL)
	r.path(luaFieldKeyring, &cfg.Keyring)
	r.boolean(luaFieldBackupScript, &cfg.BackupScript)
	r.path(luaFieldBackupDir, &cfg.BackupDir)
	r.path(luaFieldWorkDir, &cfg.WorkDir)
	r.integer(luaFieldRetries, &cfg.Retries)
	r.integer(luaFieldTimeout, &cfg.TimeoutSeconds)
	r.boolean(luaFieldKeepArchive, &cfg.KeepArchive)

	if r.err != nil {
		var ve *ValidationError
		if errors.As(r.err, &ve) {
			return nil, &ParseError{Message: "config validation failed", Detail: ve.Error()}
		}
		return nil, r.err
	}

	return cfg, validate(cfg)
}

func validate(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
		}
	}
	return nil
}

// fieldReader copies typed fields out of a Lua table, keeping the first
// type error.
type fieldReader struct {
	table *lua.LTable
	err   error
}

func (r *fieldReader) get(name string, want lua.LValueType) (lua.LValue, bool) {
	v := r.table.RawGetString(name)
	if v.Type() == lua.LTNil {
		return nil, false
	}
	if v.Type() != want {
		if r.err == nil {
			r.err = &ParseError{
				Message: fmt.Sprintf("invalid value for '%s'", name),
				Detail:  fmt.Sprintf("expected %s, got %s", want, v.Type()),
			}
		}
		return nil, false
	}
	return v, true
}

func (r *fieldReader) str(name string, dst *string) bool {
	v, ok := r.get(name, lua.LTString)
	if ok {
		*dst = v.String()
	}
	return ok
}

func (r *fieldReader) path(name string, dst *string) {
	var s string
	if !r.str(name, &s) {
		return
	}
	expanded, err := ExpandHome(strings.TrimSpace(s))
	if err != nil {
		if r.err == nil {
			r.err = err
		}
		return
	}
	*dst = expanded
}

func (r *fieldReader) boolean(name string, dst *bool) {
	if v, ok := r.get(name, lua.LTBool); ok {
		*dst = bool(v.(lua.LBool))
	}
}

func (r *fieldReader) integer(name string, dst *int) {
	if v, ok := r.get(name, lua.LTNumber); ok {
		*dst = int(lua.LVAsNumber(v))
	}
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		// Extract the most relevant part of the error
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
