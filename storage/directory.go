package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/flarexio/joystick"
)

type entry struct {
	path    string
	current *joystick.DeviceButtonMap
	saved   *joystick.DeviceButtonMap
}

// DirectoryDatabase keeps one button-map file per device below a
// directory. Changes stay in memory until SaveButtonMap writes them to
// <dir>/<provider>/<root file name>.<ext>.
type DirectoryDatabase struct {
	log       *zap.Logger
	dir       string
	codec     Codec
	readOnly  bool
	callbacks joystick.DatabaseCallbacks

	entries []*entry
	sync.RWMutex
}

// NewDirectoryDatabase indexes every file of the codec's extension below
// dir. Files that fail to load are skipped. A missing read-only directory
// yields an empty database; a missing writable one is created.
func NewDirectoryDatabase(dir string, codec Codec, readOnly bool, callbacks joystick.DatabaseCallbacks) (*DirectoryDatabase, error) {
	db := &DirectoryDatabase{
		log: zap.L().With(
			zap.String("component", "directory_database"),
			zap.String("dir", dir),
		),
		dir:       dir,
		codec:     codec,
		readOnly:  readOnly,
		callbacks: callbacks,
	}

	if _, err := os.Stat(dir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}

		if readOnly {
			db.log.Warn("directory not found")
			return db, nil
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	if err := db.index(); err != nil {
		return nil, err
	}

	db.log.Info("database opened",
		zap.Int("devices", len(db.entries)),
		zap.Bool("readOnly", readOnly),
	)

	return db, nil
}

func (db *DirectoryDatabase) index() error {
	ext := "." + db.codec.Extension()

	return filepath.WalkDir(db.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			db.log.Warn(err.Error(), zap.String("path", path))
			return nil
		}

		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ext) {
			return nil
		}

		dm, err := db.load(path)
		if err != nil {
			db.log.Warn(err.Error(), zap.String("path", path))
			return nil
		}

		db.entries = append(db.entries, &entry{
			path:    path,
			current: dm,
			saved:   dm.Clone(),
		})

		if db.callbacks != nil {
			db.callbacks.OnAdd(dm.Device, dm.Clone())
		}

		return nil
	})
}

func (db *DirectoryDatabase) load(path string) (*joystick.DeviceButtonMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return db.codec.Decode(f)
}

func (db *DirectoryDatabase) Len() int {
	db.RLock()
	defer db.RUnlock()

	return len(db.entries)
}

// lookup prefers an exact match and falls back to a similar one. A similar
// match adopts the known properties of device.
func (db *DirectoryDatabase) lookup(device joystick.DeviceDescriptor) *entry {
	id := device.Identity()

	for _, e := range db.entries {
		if e.current.Device.Equal(id) {
			return e
		}
	}

	for _, e := range db.entries {
		if e.current.Device.SimilarTo(id) {
			e.current.Device.MergeProperties(id)
			return e
		}
	}

	return nil
}

func (db *DirectoryDatabase) lookupOrCreate(device joystick.DeviceDescriptor) *entry {
	if e := db.lookup(device); e != nil {
		return e
	}

	e := &entry{
		current: joystick.NewDeviceButtonMap(device.Identity()),
	}

	db.entries = append(db.entries, e)
	return e
}

func (db *DirectoryDatabase) ButtonMap(device joystick.DeviceDescriptor) (*joystick.DeviceButtonMap, error) {
	db.Lock()
	defer db.Unlock()

	e := db.lookup(device)
	if e == nil {
		return nil, joystick.ErrDeviceNotFound
	}

	return e.current.Clone(), nil
}

func (db *DirectoryDatabase) MapFeatures(device joystick.DeviceDescriptor, controllerID string, features []joystick.Feature) error {
	if db.readOnly {
		return joystick.ErrReadOnly
	}

	db.Lock()
	defer db.Unlock()

	e := db.lookupOrCreate(device)
	e.current.MapFeatures(controllerID, features)

	return nil
}

func (db *DirectoryDatabase) IgnoredPrimitives(device joystick.DeviceDescriptor) ([]joystick.DriverPrimitive, error) {
	db.Lock()
	defer db.Unlock()

	e := db.lookup(device)
	if e == nil {
		return nil, joystick.ErrDeviceNotFound
	}

	return e.current.Configuration.IgnoredPrimitives(), nil
}

func (db *DirectoryDatabase) SetIgnoredPrimitives(device joystick.DeviceDescriptor, primitives []joystick.DriverPrimitive) error {
	if db.readOnly {
		return joystick.ErrReadOnly
	}

	db.Lock()
	defer db.Unlock()

	e := db.lookupOrCreate(device)
	e.current.Configuration.SetIgnoredPrimitives(primitives)

	return nil
}

// SaveButtonMap writes the device's file and makes it the revert point.
func (db *DirectoryDatabase) SaveButtonMap(device joystick.DeviceDescriptor) error {
	if db.readOnly {
		return joystick.ErrReadOnly
	}

	db.Lock()
	defer db.Unlock()

	e := db.lookup(device)
	if e == nil {
		return joystick.ErrDeviceNotFound
	}

	if e.path == "" {
		d := e.current.Device
		e.path = filepath.Join(db.dir, d.Provider, d.RootFileName()+"."+db.codec.Extension())
	}

	if err := db.write(e.path, e.current); err != nil {
		return err
	}

	first := e.saved == nil
	e.saved = e.current.Clone()

	db.log.Info("button map saved",
		zap.String("device", e.current.Device.String()),
		zap.String("path", e.path),
	)

	if first && db.callbacks != nil {
		db.callbacks.OnAdd(e.current.Device, e.current.Clone())
	}

	return nil
}

func (db *DirectoryDatabase) write(path string, dm *joystick.DeviceButtonMap) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".buttonmap-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := db.codec.Encode(f, dm); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), path)
}

// RevertButtonMap discards every change since the last load or save.
func (db *DirectoryDatabase) RevertButtonMap(device joystick.DeviceDescriptor) error {
	if db.readOnly {
		return joystick.ErrReadOnly
	}

	db.Lock()
	defer db.Unlock()

	e := db.lookup(device)
	if e == nil {
		return joystick.ErrDeviceNotFound
	}

	if e.saved == nil {
		db.entries = removeEntry(db.entries, e)
		return nil
	}

	e.current = e.saved.Clone()
	return nil
}

func (db *DirectoryDatabase) ResetButtonMap(device joystick.DeviceDescriptor, controllerID string) error {
	if db.readOnly {
		return joystick.ErrReadOnly
	}

	db.Lock()
	defer db.Unlock()

	e := db.lookup(device)
	if e == nil {
		return joystick.ErrDeviceNotFound
	}

	e.current.ResetButtonMap(controllerID)
	return nil
}

func removeEntry(entries []*entry, target *entry) []*entry {
	for i, e := range entries {
		if e == target {
			return append(entries[:i], entries[i+1:]...)
		}
	}

	return entries
}
