package config

// Overrides carries command line values. Empty fields leave the loaded
// configuration unchanged.
type Overrides struct {
	ListingURL string
	FetchMode  string
	StagingDir string
	OutputFile string
	Sheet      string
	Marker     string
}

// ApplyOverrides sets every non-empty override and validates the result
func (c *Config) ApplyOverrides(o Overrides) error {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Source.ListingURL, o.ListingURL)
	set(&c.Source.FetchMode, o.FetchMode)
	set(&c.Paths.StagingDir, o.StagingDir)
	set(&c.Paths.OutputFile, o.OutputFile)
	set(&c.Workbook.Sheet, o.Sheet)
	set(&c.Workbook.Marker, o.Marker)
	return c.Validate()
}
