package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/Alia5/GLIDER/internal/configpaths"
	"github.com/Alia5/GLIDER/internal/gesture"
	"github.com/Alia5/GLIDER/internal/hook"
	"github.com/Alia5/GLIDER/internal/log"
	"github.com/Alia5/GLIDER/internal/server/api"
	"github.com/Alia5/GLIDER/internal/server/api/auth"
	"github.com/Alia5/GLIDER/internal/server/api/handler"
	"github.com/Alia5/GLIDER/internal/util"
)

// Version identifies the GLIDER release over the API.
const Version = "0.3.0"

const keyFileName = "glider.key.txt"

type Server struct {
	GestureConfig     gesture.Config   `embed:"" prefix:"gesture."`
	ApiServerConfig   api.ServerConfig `embed:"" prefix:"api."`
	GesturesFile      string           `help:"Path to the gesture store (defaults to gestures.json in the config dir)" env:"GLIDER_GESTURES_FILE"`
	ConnectionTimeout time.Duration    `help:"API connection operation timeout" default:"30s" env:"GLIDER_CONNECTION_TIMEOUT"`
}

// Run is called by Kong when the server command is executed.
func (s *Server) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.StartServer(ctx, logger, rawLogger)
}

func (s *Server) StartServer(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	s.ApiServerConfig.ConnectionTimeout = s.ConnectionTimeout

	logger.Info("Starting GLIDER gesture engine", "addr", s.ApiServerConfig.Addr)

	keyFileDir, err := configpaths.DefaultConfigDir()
	if err != nil {
		return fmt.Errorf("failed to resolve key file path: %w", err)
	}
	keyFilePath := filepath.Join(keyFileDir, keyFileName)
	if pwd, err := os.ReadFile(keyFilePath); err == nil {
		s.ApiServerConfig.Password = strings.TrimSpace(string(pwd))
	} else {
		newPwd, err := auth.GenerateKey()
		if err != nil {
			return fmt.Errorf("failed to generate new API password: %w", err)
		}
		if err := os.MkdirAll(keyFileDir, 0o700); err != nil {
			return fmt.Errorf("failed to create config dir for key file: %w", err)
		}
		if err := os.WriteFile(keyFilePath, []byte(newPwd), 0o600); err != nil {
			return fmt.Errorf("failed to write new API password to file: %w", err)
		}
		s.ApiServerConfig.Password = newPwd
		logger.Info("Generated API server password", "path", keyFilePath)
		logger.Info("-------------------------------------")
		logger.Info("Your GLIDER API server password is:")
		logger.Info("-------------------------------------")
		logger.Info(newPwd)
		logger.Info("-------------------------------------")
		logger.Info("You can change this password at any time by editing the file")
	}

	gesturesPath := s.GesturesFile
	if gesturesPath == "" {
		gesturesPath, err = configpaths.DefaultGesturesPath()
		if err != nil {
			return fmt.Errorf("failed to resolve gesture store path: %w", err)
		}
	}
	db := gesture.LoadDatabase(gesturesPath, logger)
	logger.Info("Gesture store loaded", "path", gesturesPath, "gestures", db.Len())

	svc := gesture.NewService(s.GestureConfig, db, gesture.Backends{
		Hook:    hook.NewBackend(logger),
		Overlay: gesture.NopOverlay{},
		Clicker: hook.NewClicker(),
		Cursor:  hook.NewCursor(),
	}, logger, rawLogger)
	if err := gesture.InitInstance(svc); err != nil {
		return err
	}
	defer gesture.ShutdownInstance()

	if s.GestureConfig.Enabled {
		if err := svc.Start(); err != nil {
			// The daemon stays up so the hook can be retried over the API.
			logger.Error("failed to start gesture capture", "error", err)
		}
	}

	if s.ApiServerConfig.Addr == "" {
		logger.Error("API server address must be set (default :3243).")
		return fmt.Errorf("API server address must be set (default :3243)")
	}

	broker := api.NewActionBroker(logger)
	go broker.Run(ctx, svc.Actions())

	apiSrv := api.New(svc, s.ApiServerConfig.Addr, s.ApiServerConfig, logger)
	r := apiSrv.Router()
	r.Register("ping", handler.Ping(Version))
	r.Register("status", handler.Status(svc))
	r.Register("engine/start", handler.EngineStart(svc))
	r.Register("engine/stop", handler.EngineStop(svc))
	r.Register("gestures/list", handler.GesturesList(svc))
	r.Register("gestures/reload", handler.GesturesReload(svc, gesturesPath))
	r.RegisterStream("actions/stream", api.ActionStreamHandler(broker))

	if err := apiSrv.Start(); err != nil {
		logger.Error("failed to start API server", "error", err)
		if util.IsRunFromGUI() {
			fmt.Println("Press any key to exit...")
			var b []byte = make([]byte, 1)
			_, _ = os.Stdin.Read(b)
		}
		return err
	}

	if util.IsRunFromGUI() {
		go (func() {
			time.Sleep(250 * time.Millisecond)
			util.HideConsoleWindow()
		})()
	}

	<-ctx.Done()
	apiSrv.Close()
	return nil
}
