package joystick

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/nats-io/nats.go/micro"
	"github.com/stretchr/testify/assert"
)

type fakeRequest struct {
	micro.Request

	data      []byte
	response  []byte
	errorCode string
}

func newFakeRequest(v any) *fakeRequest {
	data, _ := json.Marshal(v)
	return &fakeRequest{data: data}
}

func (r *fakeRequest) Data() []byte {
	return r.data
}

func (r *fakeRequest) RespondJSON(v any, _ ...micro.RespondOpt) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}

	r.response = bs
	return nil
}

func (r *fakeRequest) Error(code, description string, data []byte, _ ...micro.RespondOpt) error {
	r.errorCode = code
	r.response = []byte(description)
	return nil
}

func TestFeatureHandlers(t *testing.T) {
	assert := assert.New(t)

	svc, _ := newTestService()
	defer svc.Close()

	req := newFakeRequest(&FeaturesRequest{
		Device:     testPad,
		Controller: profileDefault,
		Features: []FeatureRecord{
			{Name: "a", PrimitiveRecord: PrimitiveRecord{Button: "3"}},
			{Name: "leftstick", Up: &PrimitiveRecord{Axis: "-1"}, Down: &PrimitiveRecord{Axis: "+1"}},
		},
	})

	MapFeaturesHandler(svc)(req)
	assert.Empty(req.errorCode)
	assert.JSONEq(`{"status":"ok"}`, string(req.response))

	req = newFakeRequest(&FeaturesRequest{
		Device:     testPad,
		Controller: profileDefault,
	})

	GetFeaturesHandler(svc)(req)
	assert.Empty(req.errorCode)

	var records []FeatureRecord
	if err := json.Unmarshal(req.response, &records); err != nil {
		assert.Fail(err.Error())
		return
	}

	features, err := DecodeFeatures(records)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal([]Feature{
		NewScalar("a", NewButton(3)),
		NewAnalogStick("leftstick",
			NewSemiAxis(1, 0, SemiAxisNegative, 1),
			NewSemiAxis(1, 0, SemiAxisPositive, 1),
			DriverPrimitive{},
			DriverPrimitive{},
		),
	}, features)
}

func TestHandlerErrors(t *testing.T) {
	assert := assert.New(t)

	svc, _ := newTestService()
	defer svc.Close()

	req := &fakeRequest{data: []byte("{")}
	GetFeaturesHandler(svc)(req)
	assert.Equal("400", req.errorCode)

	req = newFakeRequest(&FeaturesRequest{Device: testPad, Controller: profileSNES})
	GetFeaturesHandler(svc)(req)
	assert.Equal("404", req.errorCode)

	req = newFakeRequest(&FeaturesRequest{
		Device:     testPad,
		Controller: profileDefault,
		Features: []FeatureRecord{
			{Name: "a", PrimitiveRecord: PrimitiveRecord{Button: "1", Hat: "h0up"}},
		},
	})
	MapFeaturesHandler(svc)(req)
	assert.Equal("400", req.errorCode)

	req = newFakeRequest(&IgnoredPrimitivesRequest{Device: DeviceDescriptor{Name: "Pad"}})
	GetIgnoredPrimitivesHandler(svc)(req)
	assert.Equal("400", req.errorCode)

	req = newFakeRequest(&testPad)
	RevertButtonMapHandler(svc)(req)
	assert.Equal("417", req.errorCode)
}

func TestIgnoredPrimitivesHandlers(t *testing.T) {
	assert := assert.New(t)

	svc, _ := newTestService()
	defer svc.Close()

	req := newFakeRequest(&IgnoredPrimitivesRequest{
		Device:     testPad,
		Primitives: []PrimitiveRecord{{Button: "8"}, {Hat: "h0left"}},
	})

	SetIgnoredPrimitivesHandler(svc)(req)
	assert.Empty(req.errorCode)

	req = newFakeRequest(&IgnoredPrimitivesRequest{Device: testPad})
	GetIgnoredPrimitivesHandler(svc)(req)
	assert.Empty(req.errorCode)
	assert.JSONEq(`[{"button":"8"},{"hat":"h0left"}]`, string(req.response))

	req = newFakeRequest(&testPad)
	SaveButtonMapHandler(svc)(req)
	assert.Empty(req.errorCode)
}

func TestHandlersRejectNullBody(t *testing.T) {
	assert := assert.New(t)

	svc, _ := newTestService()
	defer svc.Close()

	handlers := []micro.HandlerFunc{
		GetFeaturesHandler(svc),
		MapFeaturesHandler(svc),
		GetIgnoredPrimitivesHandler(svc),
		SetIgnoredPrimitivesHandler(svc),
		SaveButtonMapHandler(svc),
		RevertButtonMapHandler(svc),
		ResetButtonMapHandler(svc),
	}

	for _, handler := range handlers {
		req := &fakeRequest{data: []byte("null")}

		assert.NotPanics(func() {
			handler(req)
		})

		assert.Equal("400", req.errorCode)
	}
}

func TestMapFeaturesHandlerUnmaps(t *testing.T) {
	assert := assert.New(t)

	svc, _ := newTestService()
	defer svc.Close()

	req := newFakeRequest(&FeaturesRequest{
		Device:     testPad,
		Controller: profileDefault,
		Features: []FeatureRecord{
			{Name: "a", PrimitiveRecord: PrimitiveRecord{Button: "3"}},
			{Name: "b", PrimitiveRecord: PrimitiveRecord{Button: "4"}},
		},
	})

	MapFeaturesHandler(svc)(req)
	assert.Empty(req.errorCode)

	req = newFakeRequest(&FeaturesRequest{
		Device:     testPad,
		Controller: profileDefault,
		Features:   []FeatureRecord{{Name: "a"}},
	})

	MapFeaturesHandler(svc)(req)
	assert.Empty(req.errorCode)
	assert.JSONEq(`{"status":"ok"}`, string(req.response))

	features, err := svc.GetFeatures(testPad, profileDefault)
	if err != nil {
		assert.Fail(err.Error())
		return
	}

	assert.Equal([]Feature{NewScalar("b", NewButton(4))}, features)
}

type fakePublisher struct {
	messages map[string][][]byte
	sync.Mutex
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.Lock()
	defer p.Unlock()

	p.messages[subject] = append(p.messages[subject], data)
	return nil
}

func TestPublishEvents(t *testing.T) {
	assert := assert.New(t)

	pub := &fakePublisher{messages: make(map[string][][]byte)}

	events := make(chan Event, 3)
	events <- Event{Joystick: 0, Type: EventButton, Index: 2, Pressed: true}
	events <- Event{Joystick: 1, Type: EventAxis, Index: 0, Value: -0.5}
	events <- Event{Joystick: 0, Type: EventHat, Hat: HatDown}
	close(events)

	PublishEvents(context.Background(), pub, events)

	assert.Len(pub.messages["joystick.0.events"], 2)
	assert.Len(pub.messages["joystick.1.events"], 1)

	assert.JSONEq(`{"joystick":0,"type":"button","index":2,"pressed":true}`,
		string(pub.messages["joystick.0.events"][0]))
	assert.JSONEq(`{"joystick":1,"type":"axis","value":-0.5}`,
		string(pub.messages["joystick.1.events"][0]))
}
