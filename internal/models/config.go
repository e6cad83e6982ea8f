package models

import (
	"fmt"
	"strings"
	"time"
)

// Defaults for the ALT Sisyphus mirror
const (
	DefaultMirror  = "http://ftp.altlinux.org/pub/distributions/ALTLinux/Sisyphus"
	DefaultArchID  = "x86_64"
	DefaultPkgType = "RPMS.classic"
	DefaultTimeout = 2 * time.Minute
)

// Config contains the settings of a single hades run
type Config struct {
	// Repository location
	Mirror  string `yaml:"mirror"`
	Arch    string `yaml:"arch"`
	PkgType string `yaml:"type"`

	// Transport
	Timeout time.Duration `yaml:"timeout"`

	// Install
	DownloadDir   string `yaml:"download_dir"`
	ExtractDir    string `yaml:"extract_dir"`
	NativeExtract bool   `yaml:"native_extract"`
	AssumeYes     bool   `yaml:"assume_yes"`
	Elevate       bool   `yaml:"elevate"`
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	return Config{
		Mirror:      DefaultMirror,
		Arch:        DefaultArchID,
		PkgType:     DefaultPkgType,
		Timeout:     DefaultTimeout,
		DownloadDir: "/tmp",
		ExtractDir:  "/",
		Elevate:     true,
	}
}

// BaseURL returns the directory on the mirror holding the packages
func (c Config) BaseURL() string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.Mirror, "/"), c.Arch, c.PkgType)
}

// PackageSuffix is the arch+extension tail of file names in this repository
func (c Config) PackageSuffix() string {
	return "." + c.Arch + ".rpm"
}
