package joystick

import (
	"go.uber.org/zap"
)

func LoggingMiddleware(log *zap.Logger) ServiceMiddleware {
	return func(next Service) Service {
		log := log.With(
			zap.String("service", "joystick"),
		)

		log.Info("service built")

		return &loggingMiddleware{log, next}
	}
}

type loggingMiddleware struct {
	log  *zap.Logger
	next Service
}

func (mw *loggingMiddleware) Joysticks() []JoystickInfo {
	return mw.next.Joysticks()
}

func (mw *loggingMiddleware) Events() <-chan Event {
	return mw.next.Events()
}

func (mw *loggingMiddleware) GetFeatures(device DeviceDescriptor, controllerID string) ([]Feature, error) {
	log := mw.log.With(
		zap.String("action", "get_features"),
		zap.String("device", device.String()),
		zap.String("controller", controllerID),
	)

	features, err := mw.next.GetFeatures(device, controllerID)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Info("got features", zap.Int("count", len(features)))
	return features, nil
}

func (mw *loggingMiddleware) MapFeatures(device DeviceDescriptor, controllerID string, features []Feature) error {
	log := mw.log.With(
		zap.String("action", "map_features"),
		zap.String("device", device.String()),
		zap.String("controller", controllerID),
		zap.Int("count", len(features)),
	)

	err := mw.next.MapFeatures(device, controllerID, features)
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("features mapped")
	return nil
}

func (mw *loggingMiddleware) GetIgnoredPrimitives(device DeviceDescriptor) ([]DriverPrimitive, error) {
	log := mw.log.With(
		zap.String("action", "get_ignored_primitives"),
		zap.String("device", device.String()),
	)

	primitives, err := mw.next.GetIgnoredPrimitives(device)
	if err != nil {
		log.Error(err.Error())
		return nil, err
	}

	log.Debug("got ignored primitives", zap.Int("count", len(primitives)))
	return primitives, nil
}

func (mw *loggingMiddleware) SetIgnoredPrimitives(device DeviceDescriptor, primitives []DriverPrimitive) error {
	log := mw.log.With(
		zap.String("action", "set_ignored_primitives"),
		zap.String("device", device.String()),
		zap.Int("count", len(primitives)),
	)

	err := mw.next.SetIgnoredPrimitives(device, primitives)
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("ignored primitives updated")
	return nil
}

func (mw *loggingMiddleware) SaveButtonMap(device DeviceDescriptor) error {
	log := mw.log.With(
		zap.String("action", "save_button_map"),
		zap.String("device", device.String()),
	)

	err := mw.next.SaveButtonMap(device)
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("button map saved")
	return nil
}

func (mw *loggingMiddleware) RevertButtonMap(device DeviceDescriptor) error {
	log := mw.log.With(
		zap.String("action", "revert_button_map"),
		zap.String("device", device.String()),
	)

	err := mw.next.RevertButtonMap(device)
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("button map reverted")
	return nil
}

func (mw *loggingMiddleware) ResetButtonMap(device DeviceDescriptor, controllerID string) error {
	log := mw.log.With(
		zap.String("action", "reset_button_map"),
		zap.String("device", device.String()),
		zap.String("controller", controllerID),
	)

	err := mw.next.ResetButtonMap(device, controllerID)
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("button map reset")
	return nil
}

func (mw *loggingMiddleware) Close() error {
	log := mw.log.With(
		zap.String("action", "close"),
	)

	err := mw.next.Close()
	if err != nil {
		log.Error(err.Error())
		return err
	}

	log.Info("service closed")
	return nil
}
