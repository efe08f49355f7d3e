// Package config is the translator's read-only global configuration
// record: exactly the options spec.md §6 enumerates, with no free-form
// keys at the boundary (spec.md §9 Design Notes).
package config

// Config is immutable once built; construct it with New and the With*
// functional options, mirroring the options-struct idiom used throughout
// the larger example repos for library configuration surfaces.
type Config struct {
	provenance    bool
	incremental   bool
	engine        string
	compile       bool
	dlProgram     bool
	generate      bool
	profile       bool
	outputDir     string
	factDir       string
	debugReport   bool
}

// Option mutates a Config under construction.
type Option func(*Config)

// New builds a Config with every option at its spec.md §6 default: all
// booleans false, outputDir/factDir/engine empty.
func New(opts ...Option) Config {
	var c Config
	for _, o := range opts {
		o(&c)
	}
	return c
}

func WithProvenance(v bool) Option  { return func(c *Config) { c.provenance = v } }
func WithIncremental(v bool) Option { return func(c *Config) { c.incremental = v } }
func WithEngine(v string) Option    { return func(c *Config) { c.engine = v } }
func WithCompile(v bool) Option     { return func(c *Config) { c.compile = v } }
func WithDLProgram(v bool) Option   { return func(c *Config) { c.dlProgram = v } }
func WithGenerate(v bool) Option    { return func(c *Config) { c.generate = v } }
func WithProfile(v bool) Option     { return func(c *Config) { c.profile = v } }
func WithOutputDir(v string) Option { return func(c *Config) { c.outputDir = v } }
func WithFactDir(v string) Option   { return func(c *Config) { c.factDir = v } }
func WithDebugReport(v bool) Option { return func(c *Config) { c.debugReport = v } }

func (c Config) Provenance() bool  { return c.provenance }
func (c Config) Incremental() bool { return c.incremental }
func (c Config) Engine() string    { return c.engine }
func (c Config) HasEngine() bool   { return c.engine != "" }
func (c Config) Compile() bool     { return c.compile }
func (c Config) DLProgram() bool   { return c.dlProgram }
func (c Config) Generate() bool    { return c.generate }
func (c Config) Profile() bool     { return c.profile }
func (c Config) OutputDir() string { return c.outputDir }
func (c Config) FactDir() string   { return c.factDir }
func (c Config) DebugReport() bool { return c.debugReport }

// StdoutOutput reports whether output-dir=="-" (outputs route to
// stdout/stdoutprintsize per spec.md §6).
func (c Config) StdoutOutput() bool { return c.outputDir == "-" }

// SkipProvenanceDedup reports whether any one of compile, dl-program or
// generate is set, which gates off C5's provenance dedup filter (spec.md
// §4.5.2, §6): "the compilation back-end handles it".
func (c Config) SkipProvenanceDedup() bool {
	return c.compile || c.dlProgram || c.generate
}
