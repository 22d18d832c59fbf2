package joystick

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

var (
	ErrInvalidDevice      = errors.New("invalid device")
	ErrControllerRequired = errors.New("controller id required")
	ErrFeaturesNotFound   = errors.New("features not found")
)

type Service interface {
	Joysticks() []JoystickInfo
	Events() <-chan Event

	GetFeatures(device DeviceDescriptor, controllerID string) ([]Feature, error)
	MapFeatures(device DeviceDescriptor, controllerID string, features []Feature) error
	GetIgnoredPrimitives(device DeviceDescriptor) ([]DriverPrimitive, error)
	SetIgnoredPrimitives(device DeviceDescriptor, primitives []DriverPrimitive) error
	SaveButtonMap(device DeviceDescriptor) error
	RevertButtonMap(device DeviceDescriptor) error
	ResetButtonMap(device DeviceDescriptor, controllerID string) error
	Close() error
}

type ServiceMiddleware func(next Service) Service

// NewService starts polling the manager until the service is closed.
func NewService(mapper *ButtonMapper, manager *Manager) Service {
	ctx, cancel := context.WithCancel(context.Background())

	svc := &service{
		log: zap.L().With(
			zap.String("service", "joystick"),
		),
		mapper:  mapper,
		manager: manager,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(svc.done)
		manager.Run(ctx)
	}()

	return svc
}

type service struct {
	log     *zap.Logger
	mapper  *ButtonMapper
	manager *Manager
	cancel  context.CancelFunc
	done    chan struct{}
}

func (svc *service) Joysticks() []JoystickInfo {
	return svc.manager.Joysticks()
}

func (svc *service) Events() <-chan Event {
	return svc.manager.Events()
}

func (svc *service) GetFeatures(device DeviceDescriptor, controllerID string) ([]Feature, error) {
	if !device.IsValid() {
		return nil, ErrInvalidDevice
	}

	if controllerID == "" {
		return nil, ErrControllerRequired
	}

	features, ok := svc.mapper.GetFeatures(device, controllerID)
	if !ok {
		return nil, ErrFeaturesNotFound
	}

	return features, nil
}

func (svc *service) MapFeatures(device DeviceDescriptor, controllerID string, features []Feature) error {
	if !device.IsValid() {
		return ErrInvalidDevice
	}

	if controllerID == "" {
		return ErrControllerRequired
	}

	return svc.mapper.MapFeatures(device, controllerID, features)
}

func (svc *service) GetIgnoredPrimitives(device DeviceDescriptor) ([]DriverPrimitive, error) {
	if !device.IsValid() {
		return nil, ErrInvalidDevice
	}

	return svc.mapper.IgnoredPrimitives(device)
}

func (svc *service) SetIgnoredPrimitives(device DeviceDescriptor, primitives []DriverPrimitive) error {
	if !device.IsValid() {
		return ErrInvalidDevice
	}

	if err := svc.mapper.SetIgnoredPrimitives(device, primitives); err != nil {
		return err
	}

	svc.manager.RefreshIgnoredPrimitives(device)
	return nil
}

func (svc *service) SaveButtonMap(device DeviceDescriptor) error {
	if !device.IsValid() {
		return ErrInvalidDevice
	}

	return svc.mapper.SaveButtonMap(device)
}

func (svc *service) RevertButtonMap(device DeviceDescriptor) error {
	if !device.IsValid() {
		return ErrInvalidDevice
	}

	if err := svc.mapper.RevertButtonMap(device); err != nil {
		return err
	}

	svc.manager.RefreshIgnoredPrimitives(device)
	return nil
}

func (svc *service) ResetButtonMap(device DeviceDescriptor, controllerID string) error {
	if !device.IsValid() {
		return ErrInvalidDevice
	}

	if controllerID == "" {
		return ErrControllerRequired
	}

	return svc.mapper.ResetButtonMap(device, controllerID)
}

func (svc *service) Close() error {
	if svc.cancel != nil {
		svc.cancel()
		svc.cancel = nil

		<-svc.done
	}

	return svc.manager.Close()
}
