package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/hadespm/hades/internal/install"
	"github.com/hadespm/hades/internal/models"
	"github.com/hadespm/hades/internal/sisyphus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type action int

const (
	actionUpdate action = iota
	actionSearch
	actionInstall
)

type options struct {
	update  bool
	search  bool
	install bool
	pkg     string

	configPath  string
	mirror      string
	arch        string
	pkgType     string
	timeout     time.Duration
	downloadDir string
	extractDir  string
	native      bool
	yes         bool
	noElevate   bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "hades",
		Short: "Fast RPM package manager for ALT Sisyphus",
		Long: `HadesPM: пакетный менеджер на базе RPM для Alt Sisyphus.

Hades reads the package index of an ALT Sisyphus mirror, searches it by
name and installs a selected package by unpacking its payload into the
filesystem.

Examples:
  hades --update
  hades --search --pkg firefox
  hades --install --pkg htop`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			act, err := opts.action()
			if err != nil {
				return err
			}

			cfg, err := resolveConfig(cmd, &opts)
			if err != nil {
				return err
			}
			if err := validateConfig(&cfg); err != nil {
				return err
			}
			logrus.Debugf("Configuration: %+v", cfg)

			console := NewConsole(cmd.InOrStdin(), cmd.OutOrStdout())
			return run(cmd, console, cfg, act, opts.pkg)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Actions
	rootCmd.Flags().BoolVarP(&opts.update, "update", "u", false, "Обновить список пакетов")
	rootCmd.Flags().BoolVarP(&opts.search, "search", "s", false, "Искать пакет по названию")
	rootCmd.Flags().BoolVarP(&opts.install, "install", "i", false, "Установить пакет")
	rootCmd.Flags().StringVarP(&opts.pkg, "pkg", "p", "", "Имя пакета")

	// Repository flags
	rootCmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to the YAML config file")
	rootCmd.Flags().StringVar(&opts.mirror, "mirror", models.DefaultMirror, "Sisyphus mirror URL")
	rootCmd.Flags().StringVar(&opts.arch, "arch", models.DefaultArchID, "Repository architecture")
	rootCmd.Flags().StringVar(&opts.pkgType, "type", models.DefaultPkgType, "Repository component directory")
	rootCmd.Flags().DurationVar(&opts.timeout, "timeout", models.DefaultTimeout, "HTTP request timeout")

	// Install flags
	rootCmd.Flags().StringVar(&opts.downloadDir, "download-dir", "/tmp", "Directory for downloaded packages")
	rootCmd.Flags().StringVar(&opts.extractDir, "extract-dir", "/", "Directory the payload is unpacked into")
	rootCmd.Flags().BoolVar(&opts.native, "native", false, "Unpack payloads without rpm2cpio and cpio")
	rootCmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Install without asking for confirmation")
	rootCmd.Flags().BoolVar(&opts.noElevate, "no-elevate", false, "Do not re-run through sudo")

	return rootCmd
}

// action picks the command to run. Update wins over install, install over search.
func (o *options) action() (action, error) {
	switch {
	case o.update:
		return actionUpdate, nil
	case o.install:
		if o.pkg == "" {
			return 0, &models.HadesError{
				Type: models.ErrUsage,
				Err:  fmt.Errorf("вы не ввели названия пакетов для установки"),
			}
		}
		return actionInstall, nil
	case o.search:
		if o.pkg == "" {
			return 0, &models.HadesError{
				Type: models.ErrUsage,
				Err:  fmt.Errorf("вы не ввели названия пакетов для поиска"),
			}
		}
		return actionSearch, nil
	default:
		return 0, &models.HadesError{
			Type: models.ErrUsage,
			Err:  fmt.Errorf("не было введено аргументов. `--help` или `-h` для просмотра справки"),
		}
	}
}

// resolveConfig loads the config file and applies the flags set on the command line
func resolveConfig(cmd *cobra.Command, opts *options) (models.Config, error) {
	path, explicit := opts.configPath, opts.configPath != ""
	if !explicit {
		path = defaultConfigPath()
	}

	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("mirror") {
		cfg.Mirror = opts.mirror
	}
	if flags.Changed("arch") {
		cfg.Arch = opts.arch
	}
	if flags.Changed("type") {
		cfg.PkgType = opts.pkgType
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("download-dir") {
		cfg.DownloadDir = opts.downloadDir
	}
	if flags.Changed("extract-dir") {
		cfg.ExtractDir = opts.extractDir
	}
	if flags.Changed("native") {
		cfg.NativeExtract = opts.native
	}
	if flags.Changed("yes") {
		cfg.AssumeYes = opts.yes
	}
	if flags.Changed("no-elevate") {
		cfg.Elevate = !opts.noElevate
	}

	return cfg, nil
}

func run(cmd *cobra.Command, console *Console, cfg models.Config, act action, pkg string) error {
	start := time.Now()
	defer func() {
		console.Info(fmt.Sprintf("Время работы: %.4f сек.", time.Since(start).Seconds()))
	}()

	var elevator install.Elevator = install.NoElevation{}
	if cfg.Elevate {
		elevator = install.NewSudoElevator()
	}

	var installer install.Installer = install.Tools{Runner: install.ExecRunner{}}
	if cfg.NativeExtract {
		installer = install.Native{}
	} else if !install.ToolsAvailable() {
		logrus.Warn("rpm2cpio or cpio not found, falling back to native extraction")
		installer = install.Native{}
	}

	s := sisyphus.New(cfg, console, elevator, installer)
	ctx := cmd.Context()

	switch act {
	case actionUpdate:
		logrus.Debugf("Refreshing index from %s", s.URL())
		n, err := s.Refresh(ctx)
		if err != nil {
			return err
		}
		console.Success(fmt.Sprintf("Список пакетов обновлён: %d записей", n))

	case actionSearch:
		if _, err := s.Search(ctx, pkg); err != nil {
			return err
		}

	case actionInstall:
		err := s.Install(ctx, pkg)
		if errors.Is(err, models.ErrCancelled) {
			console.Notice("Установка прервана")
			return nil
		}
		if err != nil {
			return err
		}
	}

	return nil
}
