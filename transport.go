package joystick

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/nats-io/nats.go/micro"
	"go.uber.org/zap"
)

type FeaturesRequest struct {
	Device     DeviceDescriptor `json:"device"`
	Controller string           `json:"controller"`
	Features   []FeatureRecord  `json:"features,omitempty"`
}

type IgnoredPrimitivesRequest struct {
	Device     DeviceDescriptor  `json:"device"`
	Primitives []PrimitiveRecord `json:"primitives,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

var statusOK = &StatusResponse{"ok"}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidDevice),
		errors.Is(err, ErrControllerRequired):
		return "400"
	case errors.Is(err, ErrReadOnly):
		return "403"
	case errors.Is(err, ErrDeviceNotFound),
		errors.Is(err, ErrFeaturesNotFound):
		return "404"
	default:
		return "417"
	}
}

func JoysticksHandler(svc Service) micro.HandlerFunc {
	return func(r micro.Request) {
		joysticks := svc.Joysticks()
		r.RespondJSON(&joysticks)
	}
}

func GetFeaturesHandler(svc Service) micro.HandlerFunc {
	return func(r micro.Request) {
		var req FeaturesRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		features, err := svc.GetFeatures(req.Device, req.Controller)
		if err != nil {
			r.Error(errorCode(err), err.Error(), nil)
			return
		}

		records := NewFeatureRecords(features)
		r.RespondJSON(&records)
	}
}

func MapFeaturesHandler(svc Service) micro.HandlerFunc {
	return func(r micro.Request) {
		var req FeaturesRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		features, err := decodeMappedFeatures(req.Features)
		if err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		if err := svc.MapFeatures(req.Device, req.Controller, features); err != nil {
			r.Error(errorCode(err), err.Error(), nil)
			return
		}

		r.RespondJSON(statusOK)
	}
}

// decodeMappedFeatures turns a record without any primitive into an
// unknown feature, which unmaps the feature of that name.
func decodeMappedFeatures(records []FeatureRecord) ([]Feature, error) {
	features := make([]Feature, 0, len(records))

	var errs []error
	for _, r := range records {
		if r.Name != "" && r.IsUnmapped() {
			features = append(features, NewFeature(r.Name, FeatureTypeUnknown))
			continue
		}

		f, err := r.Feature()
		if err != nil {
			errs = append(errs, err)
			continue
		}

		features = append(features, f)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return features, nil
}

func GetIgnoredPrimitivesHandler(svc Service) micro.HandlerFunc {
	return func(r micro.Request) {
		var req IgnoredPrimitivesRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		primitives, err := svc.GetIgnoredPrimitives(req.Device)
		if err != nil {
			r.Error(errorCode(err), err.Error(), nil)
			return
		}

		records := NewPrimitiveRecords(primitives)
		r.RespondJSON(&records)
	}
}

func SetIgnoredPrimitivesHandler(svc Service) micro.HandlerFunc {
	return func(r micro.Request) {
		var req IgnoredPrimitivesRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		primitives, err := DecodePrimitives(req.Primitives)
		if err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		if err := svc.SetIgnoredPrimitives(req.Device, primitives); err != nil {
			r.Error(errorCode(err), err.Error(), nil)
			return
		}

		r.RespondJSON(statusOK)
	}
}

func SaveButtonMapHandler(svc Service) micro.HandlerFunc {
	return deviceHandler(svc.SaveButtonMap)
}

func RevertButtonMapHandler(svc Service) micro.HandlerFunc {
	return deviceHandler(svc.RevertButtonMap)
}

func deviceHandler(fn func(device DeviceDescriptor) error) micro.HandlerFunc {
	return func(r micro.Request) {
		var device DeviceDescriptor
		if err := json.Unmarshal(r.Data(), &device); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		if err := fn(device); err != nil {
			r.Error(errorCode(err), err.Error(), nil)
			return
		}

		r.RespondJSON(statusOK)
	}
}

func ResetButtonMapHandler(svc Service) micro.HandlerFunc {
	return func(r micro.Request) {
		var req FeaturesRequest
		if err := json.Unmarshal(r.Data(), &req); err != nil {
			r.Error("400", err.Error(), nil)
			return
		}

		if err := svc.ResetButtonMap(req.Device, req.Controller); err != nil {
			r.Error(errorCode(err), err.Error(), nil)
			return
		}

		r.RespondJSON(statusOK)
	}
}

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

func EventSubject(index int) string {
	return "joystick." + strconv.Itoa(index) + ".events"
}

// PublishEvents forwards every event to joystick.<index>.events until ctx
// is done or events is closed.
func PublishEvents(ctx context.Context, pub Publisher, events <-chan Event) {
	log := zap.L().With(
		zap.String("component", "event_publisher"),
	)

	for {
		select {
		case <-ctx.Done():
			return

		case e, ok := <-events:
			if !ok {
				return
			}

			bs, err := json.Marshal(&e)
			if err != nil {
				log.Error(err.Error())
				continue
			}

			if err := pub.Publish(EventSubject(e.Joystick), bs); err != nil {
				log.Error(err.Error(),
					zap.Int("joystick", e.Joystick),
					zap.String("type", e.Type.String()),
				)
			}
		}
	}
}
