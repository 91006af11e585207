// Package install orchestrates the end-to-end installation pipeline:
// preflight, system dependencies, repository sync, virtual environment,
// model downloads, and launcher generation.
package install

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/rvctools/vcinstall/internal/brew"
	"github.com/rvctools/vcinstall/internal/cli/prompt"
	"github.com/rvctools/vcinstall/internal/config"
	"github.com/rvctools/vcinstall/internal/doctor"
	"github.com/rvctools/vcinstall/internal/errors"
	"github.com/rvctools/vcinstall/internal/execx"
	"github.com/rvctools/vcinstall/internal/fetch"
	"github.com/rvctools/vcinstall/internal/git"
	"github.com/rvctools/vcinstall/internal/launcher"
	"github.com/rvctools/vcinstall/internal/manifest"
	"github.com/rvctools/vcinstall/internal/paths"
	"github.com/rvctools/vcinstall/internal/reinstall"
	"github.com/rvctools/vcinstall/internal/venv"
)

const (
	// requirementsSrc is the generic manifest shipped by the upstream repo.
	requirementsSrc = "requirements.txt"

	// requirementsDst is the filtered manifest installed on macOS.
	requirementsDst = "requirements_macos.txt"
)

// Prompter asks the user the pipeline's two interactive questions. It is an
// interface so command tests can script answers.
type Prompter interface {
	Select(question string, options []string) (int, error)
	Confirm(question string, def bool) (bool, error)
}

// Pipeline wires the installation steps together.
type Pipeline struct {
	cfg    *config.Config
	runner execx.Runner
	logger *slog.Logger
	prompt Prompter

	brew    *brew.Client
	git     *git.Client
	fetcher *fetch.Fetcher

	lookPath func(string) bool
	checkEnv func(ctx context.Context) error
}

// New creates a Pipeline.
func New(cfg *config.Config, runner execx.Runner, logger *slog.Logger, prompt Prompter) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		runner:   runner,
		logger:   logger,
		prompt:   prompt,
		brew:     brew.NewClient(runner, logger),
		git:      git.NewClient(runner),
		fetcher:  fetch.NewFetcher(runner, logger),
		lookPath: execx.LookPath,
	}
	p.checkEnv = p.checkEnvironment
	return p
}

// Preflight runs the full check set, as used by the doctor command.
func (p *Pipeline) Preflight(ctx context.Context) *doctor.Report {
	return doctor.Preflight(p.runner, p.cfg.Python.Binary, p.cfg.InstallDir).Run(ctx)
}

// Install runs the complete pipeline. Environment problems abort before
// anything is modified.
func (p *Pipeline) Install(ctx context.Context) error {
	if err := p.checkEnv(ctx); err != nil {
		return err
	}

	formulas := append([]string{p.cfg.Python.Formula}, p.cfg.Brew.Formulas...)
	if err := p.brew.Install(ctx, formulas...); err != nil {
		return errors.NewSystemError(err, "check your Homebrew installation with: brew doctor")
	}

	python, err := p.resolvePython(ctx)
	if err != nil {
		return err
	}

	if err := p.syncRepo(ctx); err != nil {
		return err
	}

	if err := p.buildEnv(ctx, python); err != nil {
		return err
	}

	if err := p.FetchModels(ctx); err != nil {
		return err
	}

	env := launcher.DefaultEnv(p.cfg.Server.Host, p.cfg.Server.Port)
	script, err := launcher.Generate(p.cfg.InstallDir, env)
	if err != nil {
		return err
	}
	p.logger.Info("installation complete", "launcher", script)

	launch, err := p.prompt.Confirm("Launch Applio now?", false)
	if err != nil {
		// Ctrl+D on the launch question just means "not now".
		if errors.Is(err, prompt.ErrSelectionCancelled) {
			return nil
		}
		return errors.NewUserError(err, "")
	}
	if !launch {
		return nil
	}
	return launcher.Run(ctx, p.runner, p.cfg.InstallDir)
}

// Update performs the non-destructive path only: pull the repository and
// re-sync dependencies. User data directories are never touched.
func (p *Pipeline) Update(ctx context.Context) error {
	if !git.IsRepo(p.cfg.InstallDir) {
		return errors.NewUserError(
			errors.Newf("no installation found at %s", p.cfg.InstallDir),
			"run: vcinstall install",
		)
	}

	if err := p.git.Pull(ctx, p.cfg.InstallDir); err != nil {
		return errors.NewSystemError(err, "resolve local changes in the installation directory, or reinstall")
	}

	python, err := p.resolvePython(ctx)
	if err != nil {
		return err
	}
	return p.buildEnv(ctx, python)
}

// FetchModels downloads the configured pretrained models, skipping any that
// are already present.
func (p *Pipeline) FetchModels(ctx context.Context) error {
	dir := paths.Pretraineds(p.cfg.InstallDir)
	for _, m := range p.cfg.Models {
		if err := p.fetcher.Download(ctx, m.URL, filepath.Join(dir, m.Name)); err != nil {
			return errors.NewSystemError(err, "check your network connection and retry: vcinstall models")
		}
	}
	return nil
}

// Launch regenerates the launcher script and execs it.
func (p *Pipeline) Launch(ctx context.Context) error {
	if !git.IsRepo(p.cfg.InstallDir) {
		return errors.NewUserError(
			errors.Newf("no installation found at %s", p.cfg.InstallDir),
			"run: vcinstall install",
		)
	}

	env := launcher.DefaultEnv(p.cfg.Server.Host, p.cfg.Server.Port)
	if _, err := launcher.Generate(p.cfg.InstallDir, env); err != nil {
		return err
	}
	return launcher.Run(ctx, p.runner, p.cfg.InstallDir)
}

// checkEnvironment verifies the host before the pipeline modifies anything.
// Python and git are not required yet: the dependency step installs them.
func (p *Pipeline) checkEnvironment(ctx context.Context) error {
	r := doctor.NewRunner()
	r.AddCheck(doctor.NewOSCheck())
	r.AddCheck(doctor.NewXcodeToolsCheck(p.runner))
	r.AddCheck(doctor.NewBrewCheck())
	r.AddCheck(doctor.NewDiskSpaceCheck(p.cfg.InstallDir))

	report := r.Run(ctx)
	for _, res := range report.Results {
		switch res.Status {
		case doctor.SeverityError:
			p.logger.Error(res.Message, "check", res.Name)
		case doctor.SeverityWarning:
			p.logger.Warn(res.Message, "check", res.Name)
		}
	}
	if report.HasErrors() {
		for _, res := range report.Results {
			if res.Status == doctor.SeverityError {
				return errors.NewEnvironmentError(checkError(res), res.FixHint)
			}
		}
	}
	return nil
}

// checkError ties a failed preflight check to its sentinel so callers can
// match on the failure class.
func checkError(res *doctor.CheckResult) error {
	switch res.Name {
	case "operating-system":
		return errors.Wrap(errors.ErrUnsupportedOS, res.Message)
	case "xcode-tools":
		return errors.Wrap(errors.ErrToolchainMissing, res.Message)
	case "brew":
		return errors.Wrap(errors.ErrBrewMissing, res.Message)
	default:
		return errors.New(res.Message)
	}
}

// resolvePython locates the interpreter, falling back to the Homebrew
// prefix for keg-only formulas that are not linked into PATH.
func (p *Pipeline) resolvePython(ctx context.Context) (string, error) {
	bin := p.cfg.Python.Binary
	if p.lookPath(bin) {
		return bin, nil
	}

	prefix, err := p.brew.Prefix(ctx, p.cfg.Python.Formula)
	if err != nil {
		return "", errors.NewEnvironmentError(
			errors.Wrapf(errors.ErrPythonMissing, "%s not found", bin),
			"brew install "+p.cfg.Python.Formula,
		)
	}
	return filepath.Join(prefix, "bin", bin), nil
}

// syncRepo brings the installation directory to a fresh checkout. An
// existing installation offers the choice between an in-place update and a
// clean reinstall that preserves user data.
func (p *Pipeline) syncRepo(ctx context.Context) error {
	if !git.IsRepo(p.cfg.InstallDir) {
		return p.clone(ctx)
	}

	choice, err := p.prompt.Select(
		"Existing installation found at "+p.cfg.InstallDir+":",
		[]string{"Update in place", "Clean reinstall (user data preserved)"},
	)
	if err != nil {
		return errors.NewUserError(err, "")
	}

	if choice == 0 {
		return p.git.Pull(ctx, p.cfg.InstallDir)
	}
	return p.cleanReinstall(ctx)
}

func (p *Pipeline) clone(ctx context.Context) error {
	repo := p.cfg.Repo
	if err := p.git.Clone(ctx, repo.URL, repo.Branch, p.cfg.InstallDir, repo.Depth); err != nil {
		return errors.NewSystemError(err, "check network access to "+repo.URL)
	}
	return nil
}

// cleanReinstall moves the installation aside, clones fresh, then moves or
// merges user data back and removes the backup.
func (p *Pipeline) cleanReinstall(ctx context.Context) error {
	m := reinstall.NewManager(p.cfg.InstallDir, reinstall.WithLogger(p.logger))

	backupDir, err := m.Backup()
	if err != nil {
		return errors.NewSystemError(err, "")
	}

	if err := p.clone(ctx); err != nil {
		if backupDir != "" {
			p.logger.Error("clone failed, previous installation kept", "backup", backupDir)
		}
		return err
	}

	if backupDir == "" {
		return nil
	}

	res := m.Restore(backupDir)
	p.logger.Info("user data restored",
		"restored", res.Restored,
		"skipped", res.Skipped,
		"merged_weights", res.MergedWeights)

	if err := m.Cleanup(backupDir); err != nil {
		p.logger.Warn("backup cleanup failed", "backup", backupDir, "error", err)
	}
	return nil
}

// buildEnv creates the virtual environment and installs dependencies:
// tooling upgrade, the ordered pins, then the filtered manifest. The pin
// order is load-bearing and must run before the manifest install.
func (p *Pipeline) buildEnv(ctx context.Context, python string) error {
	b := venv.NewBuilder(p.runner, p.logger, p.cfg.InstallDir, python)

	if err := b.Create(ctx); err != nil {
		return errors.NewSystemError(err, "")
	}
	if err := b.UpgradeTooling(ctx); err != nil {
		return errors.NewSystemError(err, "")
	}
	if err := b.InstallPins(ctx, p.cfg.Python.Pins); err != nil {
		return errors.NewSystemError(err, "")
	}

	rules, err := manifest.LoadRules(p.cfg.RulesFile)
	if err != nil {
		return errors.NewUserError(err, "check the rules file referenced by rules_file in your config")
	}

	src := filepath.Join(p.cfg.InstallDir, requirementsSrc)
	dst := filepath.Join(p.cfg.InstallDir, requirementsDst)
	res, err := manifest.Sanitize(src, dst, rules)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	p.logger.Info("requirements sanitized", "kept", res.Kept, "dropped", res.Dropped)

	if err := b.InstallRequirements(ctx, dst); err != nil {
		return errors.NewSystemError(err, "")
	}
	return nil
}
