package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/flarexio/joystick"
	"github.com/flarexio/joystick/backend"
	"github.com/flarexio/joystick/storage"
)

const (
	Version string = "0.0.0"
)

func main() {
	app := &cli.App{
		Name: "joystick",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "path",
				Usage:   "Specifies the working directory for the Joystick service.",
				EnvVars: []string{"JOYSTICK_PATH"},
			},
			&cli.StringFlag{
				Name:    "nats",
				EnvVars: []string{"NATS_URL"},
				Value:   "wss://nats.flarex.io",
			},
		},
		Action: run,
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(cli *cli.Context) error {
	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	path := cli.String("path")
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		path = homeDir + "/.flarex/joystick"
	}

	f, err := os.Open(path + "/config.yaml")
	if err != nil {
		return err
	}
	defer f.Close()

	cfg, err := joystick.LoadConfig(f)
	if err != nil {
		return err
	}

	cfg.Path = path

	transformer := joystick.NewControllerTransformer(cfg.Transformer.MaxDevices)
	mapper := joystick.NewButtonMapper(transformer, cfg.FeatureCounts())

	if err := registerDatabases(cfg, mapper); err != nil {
		return err
	}

	scanners, err := backend.NewAll(cfg.Backends)
	if err != nil {
		return err
	}

	manager := joystick.NewManager(cfg.Scan.ManagerConfig(), mapper, scanners...)

	natsURL := cli.String("nats")
	natsCreds := path + "/user.creds"

	nc, err := nats.Connect(natsURL,
		nats.Name("joystick"),
		nats.UserCredentials(natsCreds),
	)
	if err != nil {
		manager.Close()
		return err
	}
	defer nc.Drain()

	svc := joystick.NewService(mapper, manager)
	svc = joystick.LoggingMiddleware(log)(svc)
	defer svc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go joystick.PublishEvents(ctx, nc, svc.Events())

	srv, err := micro.AddService(nc, micro.Config{
		Name:    "joystick",
		Version: Version,
	})
	if err != nil {
		return err
	}
	defer srv.Stop()

	buttonmap := srv.AddGroup("buttonmap")
	buttonmap.AddEndpoint("features_get", joystick.GetFeaturesHandler(svc), micro.WithEndpointSubject("features.get"))
	buttonmap.AddEndpoint("features_map", joystick.MapFeaturesHandler(svc), micro.WithEndpointSubject("features.map"))
	buttonmap.AddEndpoint("ignored_get", joystick.GetIgnoredPrimitivesHandler(svc), micro.WithEndpointSubject("ignored.get"))
	buttonmap.AddEndpoint("ignored_set", joystick.SetIgnoredPrimitivesHandler(svc), micro.WithEndpointSubject("ignored.set"))
	buttonmap.AddEndpoint("save", joystick.SaveButtonMapHandler(svc))
	buttonmap.AddEndpoint("revert", joystick.RevertButtonMapHandler(svc))
	buttonmap.AddEndpoint("reset", joystick.ResetButtonMapHandler(svc))

	joysticks := srv.AddGroup("joysticks")
	joysticks.AddEndpoint("list", joystick.JoysticksHandler(svc))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sign := <-quit // Wait for a termination signal

	log.Info("graceful shutdown", zap.String("signal", sign.String()))
	return nil
}

// registerDatabases registers the user directory first so its maps win
// over the read-only resources and the remote database.
func registerDatabases(cfg *joystick.Config, mapper *joystick.ButtonMapper) error {
	codec, err := storage.NewCodec(cfg.Storage.Format)
	if err != nil {
		return err
	}

	if user := cfg.Storage.User; user != "" {
		if !filepath.IsAbs(user) {
			user = filepath.Join(cfg.Path, user)
		}

		db, err := storage.NewDirectoryDatabase(user, codec, false, mapper)
		if err != nil {
			return err
		}

		mapper.RegisterDatabase(db)
	}

	for _, dir := range cfg.Storage.Resources {
		db, err := storage.NewDirectoryDatabase(dir, codec, true, mapper)
		if err != nil {
			return err
		}

		mapper.RegisterDatabase(db)
	}

	if remote := cfg.Storage.Remote; remote != nil && remote.URL != "" {
		codec, err := storage.NewCodec(remote.Format)
		if err != nil {
			return err
		}

		mapper.RegisterDatabase(storage.NewRemoteDatabase(remote.URL, codec, mapper))
	}

	return nil
}
