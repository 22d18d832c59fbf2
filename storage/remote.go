package storage

import (
	"bytes"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/flarexio/joystick"
)

// RemoteDatabase is a read-only database served over HTTP. Button maps are
// fetched from <baseURL>/<provider>/<root file name>.<ext> on first use;
// hits and misses are cached.
type RemoteDatabase struct {
	log       *zap.Logger
	client    *resty.Client
	codec     Codec
	callbacks joystick.DatabaseCallbacks

	cache map[string]*joystick.DeviceButtonMap
	sync.Mutex
}

func NewRemoteDatabase(baseURL string, codec Codec, callbacks joystick.DatabaseCallbacks) *RemoteDatabase {
	client := resty.New().
		SetBaseURL(baseURL)

	return &RemoteDatabase{
		log: zap.L().With(
			zap.String("component", "remote_database"),
			zap.String("url", baseURL),
		),
		client:    client,
		codec:     codec,
		callbacks: callbacks,
		cache:     make(map[string]*joystick.DeviceButtonMap),
	}
}

func (db *RemoteDatabase) path(device joystick.DeviceDescriptor) string {
	return fmt.Sprintf("/%s/%s.%s", device.Provider, device.RootFileName(), db.codec.Extension())
}

func (db *RemoteDatabase) fetch(device joystick.DeviceDescriptor) (*joystick.DeviceButtonMap, error) {
	path := db.path(device.Identity())

	db.Lock()
	defer db.Unlock()

	if dm, ok := db.cache[path]; ok {
		if dm == nil {
			return nil, joystick.ErrDeviceNotFound
		}

		return dm, nil
	}

	resp, err := db.client.R().
		Get(path)

	if err != nil {
		return nil, err
	}

	switch resp.StatusCode() {
	case http.StatusOK:

	case http.StatusNotFound:
		db.cache[path] = nil
		return nil, joystick.ErrDeviceNotFound

	default:
		return nil, fmt.Errorf("remote database: %s", resp.Status())
	}

	dm, err := db.codec.Decode(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, err
	}

	db.cache[path] = dm

	db.log.Info("button map fetched",
		zap.String("device", dm.Device.String()),
		zap.String("path", path),
	)

	if db.callbacks != nil {
		db.callbacks.OnAdd(dm.Device, dm.Clone())
	}

	return dm, nil
}

func (db *RemoteDatabase) ButtonMap(device joystick.DeviceDescriptor) (*joystick.DeviceButtonMap, error) {
	dm, err := db.fetch(device)
	if err != nil {
		return nil, err
	}

	return dm.Clone(), nil
}

func (db *RemoteDatabase) IgnoredPrimitives(device joystick.DeviceDescriptor) ([]joystick.DriverPrimitive, error) {
	dm, err := db.fetch(device)
	if err != nil {
		return nil, err
	}

	return dm.Configuration.IgnoredPrimitives(), nil
}

func (db *RemoteDatabase) MapFeatures(joystick.DeviceDescriptor, string, []joystick.Feature) error {
	return joystick.ErrReadOnly
}

func (db *RemoteDatabase) SetIgnoredPrimitives(joystick.DeviceDescriptor, []joystick.DriverPrimitive) error {
	return joystick.ErrReadOnly
}

func (db *RemoteDatabase) SaveButtonMap(joystick.DeviceDescriptor) error {
	return joystick.ErrReadOnly
}

func (db *RemoteDatabase) RevertButtonMap(joystick.DeviceDescriptor) error {
	return joystick.ErrReadOnly
}

func (db *RemoteDatabase) ResetButtonMap(joystick.DeviceDescriptor, string) error {
	return joystick.ErrReadOnly
}
