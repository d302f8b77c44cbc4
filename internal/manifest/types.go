package manifest

// Run records one successful backup run. Written locally under the run
// directory and optionally mirrored to S3. Informational only: the next
// run's basis comes from the pointer on the target, never from this file.
type Run struct {
	Datetime  int64    `yaml:"datetime"`
	Hostname  string   `yaml:"hostname"`
	Source    string   `yaml:"source"`
	Target    string   `yaml:"target"`
	Snapshot  string   `yaml:"snapshot"`
	Basis     string   `yaml:"basis,omitempty"`
	Excludes  []string `yaml:"excludes,omitempty"`
	LogPath   string   `yaml:"log_path"`
	LogBlake3 string   `yaml:"log_blake3,omitempty"`
}
