package cliapp

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/radj307/ARRCON/internal/apperr"
	"github.com/radj307/ARRCON/internal/config"
	"github.com/radj307/ARRCON/internal/driver"
	"github.com/radj307/ARRCON/internal/hosts"
	"github.com/radj307/ARRCON/internal/rcon"
	"github.com/radj307/ARRCON/internal/render"
	"github.com/radj307/ARRCON/internal/util"
)

func strOrNil(s string, given bool) *string {
	if !given {
		return nil
	}
	return &s
}

// run is the root command's RunE: it resolves configuration, handles the
// lifecycle flags that exit before ever touching the network, then connects
// and drives the session.
func run(f *flags, args []string) (*render.Renderer, error) {
	iniPath := filepath.Join(defaultConfigDir(), ProgramName+".ini")
	hostsPath := filepath.Join(defaultConfigDir(), ProgramName+".hosts")

	cfgMgr, err := config.Load(iniPath)
	if err != nil {
		return nil, err
	}
	reg, err := hosts.Open(hostsPath)
	if err != nil {
		return nil, err
	}

	app := cfgMgr.App()
	app.Quiet = app.Quiet || f.quiet || f.quietS
	app.NoColor = app.NoColor || f.noColor
	app.NoPrompt = app.NoPrompt || f.noPrompt

	r := render.Default(app.Quiet, app.NoColor)

	if err := util.InitLogger(util.LogConfig{Level: "warn", Quiet: app.Quiet, NoColor: app.NoColor}); err != nil {
		return r, apperr.New(apperr.UsageError, "cliapp.run", err)
	}

	if appValidation := config.ValidateApp(app); !appValidation.IsValid() {
		return r, apperr.New(apperr.UsageError, "cliapp.run", appValidation.Errors[0])
	}

	interactive := f.interactive || f.interactiveT

	switch {
	case f.printEnv:
		target, err := cfgMgr.ResolveTarget(config.TargetOverride{}, reg)
		if err != nil {
			return r, err
		}
		r.PrintEnv(config.EnvPrefix, target.Host, target.Port, target.Password)
		return r, nil

	case f.listHosts:
		r.HostTable(reg.List())
		return r, nil

	case f.removeHost != "":
		removed, err := reg.Remove(f.removeHost)
		if err != nil {
			return r, err
		}
		if removed {
			r.Info(fmt.Sprintf("removed host %q", f.removeHost))
		} else {
			r.Warn(fmt.Sprintf("no saved host named %q", f.removeHost))
		}
		return r, nil
	}

	target, err := cfgMgr.ResolveTarget(config.TargetOverride{
		Host:  strOrNil(f.host, f.host != ""),
		Port:  strOrNil(f.port, f.port != ""),
		Pass:  strOrNil(f.pass, f.pass != ""),
		Saved: f.saved,
	}, reg)
	if err != nil {
		return r, err
	}

	if f.saveHost != "" {
		result, err := reg.Add(f.saveHost, target)
		if err != nil {
			return r, err
		}
		switch result {
		case hosts.Added:
			r.Info(fmt.Sprintf("saved host %q (%s:%s)", f.saveHost, target.Host, target.Port))
		case hosts.AlreadyExistsIdentical:
			r.Info(fmt.Sprintf("host %q is already saved with these values", f.saveHost))
		case hosts.AlreadyExistsConflict:
			return r, apperr.New(apperr.UsageError, "cliapp.run", fmt.Errorf("host %q already exists with different values", f.saveHost))
		}
		return r, nil
	}

	if f.writeIni {
		if err := cfgMgr.Save(app, target); err != nil {
			return r, err
		}
		r.Info("wrote " + iniPath)
		return r, nil
	}
	if f.updateIni {
		if err := cfgMgr.Merge(app, target); err != nil {
			return r, err
		}
		r.Info("updated " + iniPath)
		return r, nil
	}

	validation := config.ValidateTarget(target)
	for _, w := range validation.Warnings {
		r.Warn(w.Error())
	}
	if !validation.IsValid() {
		return r, apperr.New(apperr.UsageError, "cliapp.run", validation.Errors[0])
	}

	commands := driver.BuildCommandList(args, f.files, r.Info, r.Warn)

	sessionCfg := rcon.DefaultConfig()
	if app.ReceiveDelay > 0 {
		sessionCfg.ReceiveDelay = app.ReceiveDelay
	}

	driverCfg := driver.Config{
		CommandDelay: time.Duration(f.waitMS) * time.Millisecond,
		Interactive:  interactive,
		NoPrompt:     app.NoPrompt,
	}
	if driverCfg.CommandDelay == 0 {
		driverCfg.CommandDelay = app.CommandDelay
	}

	guard := util.NewShutdownGuard()
	defer guard.Stop()

	r.Info(fmt.Sprintf("connecting to %s:%s", target.Host, target.Port))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	d, err := driver.Connect(ctx, target, sessionCfg, driverCfg, r, guard)
	if err != nil {
		return r, err
	}
	defer d.Close()

	var batchErr error
	ranBatch := len(commands) > 0
	if ranBatch {
		batchErr = d.RunBatch(commands)
	}

	if batchErr == nil && d.ShouldRunInteractive(ranBatch) {
		return r, d.RunInteractive(target.Host)
	}
	return r, batchErr
}

// ExitCode maps an error returned from run into a process exit code. Every
// error kind shares the same non-zero code; the message on standard error
// is what distinguishes them.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
