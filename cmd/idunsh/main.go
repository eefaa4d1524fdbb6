package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idun-project/idunsh/internal/channel"
	"github.com/idun-project/idunsh/internal/config"
	"github.com/idun-project/idunsh/internal/output"
	"github.com/idun-project/idunsh/internal/proto"
	"github.com/idun-project/idunsh/internal/ultimate"
	"github.com/idun-project/idunsh/internal/version"
)

type app struct {
	cfg config.Config

	syncdir  bool
	redirect bool
	ultimate bool
	xarg     string

	addrFlag   string
	socketFlag string

	stdout io.Writer
	stderr io.Writer
}

func main() {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	if err := a.newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "idunsh",
		Short:         "Linux shell bridge for the idun cartridge and the C64 Ultimate",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.Default()
			if a.socketFlag != "" {
				a.cfg.SocketPath = a.socketFlag
			}
			a.cfg.UltimateAddr = a.addrFlag
			if a.cfg.UltimateAddr == "" {
				a.cfg.UltimateAddr = os.Getenv("C64_ULTIMATE_IP")
			}
			return a.cfg.Validate()
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&a.syncdir, "syncdir", "s", false, "Synchronize idun shell current directory with linux")
	pf.BoolVarP(&a.redirect, "output", "o", false, "Redirect program output to terminal")
	pf.BoolVarP(&a.ultimate, "ultimate", "u", false, "Use the C64 Ultimate runner to load content")
	pf.StringVarP(&a.xarg, "xarg", "x", "", "Add flag arguments to the command")
	pf.StringVar(&a.addrFlag, "addr", "", "C64 Ultimate address (overrides $C64_ULTIMATE_IP and discovery)")
	pf.StringVar(&a.socketFlag, "socket", "", "Control process socket path")

	root.AddCommand(
		a.newGoCmd(),
		a.newLoadCmd(),
		a.newExecCmd(),
		a.newDirCmd(),
		a.newCatalogCmd(),
		a.newDrivesCmd(),
		a.newMountCmd(),
		a.newAssignCmd(),
		a.newRebootCmd(),
		a.newStopCmd(),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	}
}

func (a *app) newGoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "go <app>",
		Short: "Launch an application on the Commodore",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.rejectUltimate(); err != nil {
				return err
			}
			return a.send(proto.Go, args[0], false)
		},
	}
}

func (a *app) newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <prg>",
		Short: "Launch a native program on the Commodore",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.ultimate {
				c, err := a.ultimateClient()
				if err != nil {
					return err
				}
				return c.Load(args[0])
			}
			return a.send(proto.Load, args[0], false)
		},
	}
}

func (a *app) newExecCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <cmd> [args...]",
		Short: "Execute remote idun command/program with arguments",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.rejectUltimate(); err != nil {
				return err
			}
			arg := args[0] + " " + expandFlagArgs(a.xarg) + strings.Join(args[1:], " ")
			return a.send(proto.Exec, arg, true)
		},
	}
}

func (a *app) newDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir <dev>",
		Short: "Get file list from Idun device using short format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.rejectUltimate(); err != nil {
				return err
			}
			return a.send(proto.Dir, args[0], true)
		},
	}
}

func (a *app) newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog <dev>",
		Short: "Get file list from Idun device using long format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.rejectUltimate(); err != nil {
				return err
			}
			return a.send(proto.Catalog, expandFlagArgs(a.xarg)+args[0], true)
		},
	}
}

func (a *app) newDrivesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drives [dev]",
		Short: "Show list of the active virtual drives and mounts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.ultimate {
				c, err := a.ultimateClient()
				if err != nil {
					return err
				}
				dl, err := c.Drives()
				if err != nil {
					return err
				}
				dl.Render(a.stdout)
				return nil
			}
			dev := ""
			if len(args) == 1 {
				dev = args[0]
			}
			return a.send(proto.Drives, dev, true)
		},
	}
}

func (a *app) newMountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mount <dev> <dimage>",
		Short: "Mount a virtual floppy image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.ultimate {
				c, err := a.ultimateClient()
				if err != nil {
					return err
				}
				return c.Mount(args[0], args[1])
			}
			return a.send(proto.Mount, args[0]+" "+args[1], true)
		},
	}
}

func (a *app) newAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <dev> <path>",
		Short: "Assign local path to a virtual drive",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.rejectUltimate(); err != nil {
				return err
			}
			return a.send(proto.Assign, args[0]+" "+args[1], true)
		},
	}
}

func (a *app) newRebootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reboot",
		Short: "Fully reboot the idun cartridge and Commodore",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.rejectUltimate(); err != nil {
				return err
			}
			return a.sendRaw(proto.Reboot(0))
		},
	}
}

func (a *app) newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running program (sends the STOP key)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.rejectUltimate(); err != nil {
				return err
			}
			return a.sendRaw(proto.Stop())
		},
	}
}

func (a *app) rejectUltimate() error {
	if a.ultimate {
		return errors.New("command not supported for the C64 Ultimate")
	}
	return nil
}

// expandFlagArgs turns "abc" into "/a /b /c " for commands that accept
// switch-style flags.
func expandFlagArgs(xarg string) string {
	var b strings.Builder
	for _, c := range xarg {
		b.WriteByte('/')
		b.WriteRune(c)
		b.WriteByte(' ')
	}
	return b.String()
}

// syncWorkingDir pushes the host's current directory to the cartridge shell.
func (a *app) syncWorkingDir(client *channel.Client) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	msg, err := proto.Chdir(cwd)
	if err != nil {
		return err
	}
	if err := client.Send(msg); err != nil {
		return err
	}
	// Allow the cartridge to finish servicing the first NMI.
	time.Sleep(250 * time.Millisecond)
	return nil
}

// send issues one sys.shell command. When the command supports output
// redirection and -o was given, a redirection socket named after this
// process's pid is listened on and drained to stdout before returning.
func (a *app) send(cmd proto.Command, arg string, redirectable bool) error {
	client := &channel.Client{SocketPath: a.cfg.SocketPath}

	if a.syncdir {
		if err := a.syncWorkingDir(client); err != nil {
			return err
		}
	}

	var pid uint32
	var lis *output.Listener
	var done chan error
	if redirectable && a.redirect {
		sock := filepath.Join(a.cfg.RuntimeDir, strconv.Itoa(os.Getpid()))
		var err error
		lis, err = output.Listen(sock)
		if err != nil {
			return fmt.Errorf("bind redirection socket: %w", err)
		}
		pid = uint32(os.Getpid())
		done = make(chan error, 1)
		go func() { done <- lis.Relay(a.stdout) }()
	}

	msg, err := proto.Shell(cmd, arg, pid)
	if err != nil {
		if lis != nil {
			lis.Close()
		}
		return err
	}
	if err := client.Send(msg); err != nil {
		if lis != nil {
			lis.Close()
		}
		return err
	}

	if done != nil {
		err := <-done
		fmt.Fprintln(a.stdout)
		lis.Close()
		if err != nil {
			return fmt.Errorf("receive redirected output: %w", err)
		}
	}
	return nil
}

// sendRaw issues a fixed-form command line (sys.stop, sys.reboot).
func (a *app) sendRaw(msg string) error {
	client := &channel.Client{SocketPath: a.cfg.SocketPath}
	if a.syncdir {
		if err := a.syncWorkingDir(client); err != nil {
			return err
		}
	}
	return client.Send(msg)
}

// ultimateClient resolves the device address: explicit configuration wins,
// otherwise a LAN discovery probe. Absence of a device is a configuration
// problem for the user to fix, not a transport error.
func (a *app) ultimateClient() (*ultimate.Client, error) {
	addr := a.cfg.UltimateAddr
	if addr == "" {
		found, ok := ultimate.Detect(a.cfg.DiscoveryTimeout)
		if !ok {
			return nil, errors.New("no C64 Ultimate found on the LAN; set --addr or $C64_ULTIMATE_IP")
		}
		addr = found
	}
	return ultimate.NewClient(addr), nil
}
