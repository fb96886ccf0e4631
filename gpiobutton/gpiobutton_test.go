package gpiobutton

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gpio "github.com/temoto/gpio-cdev-go"
	gpiomock "github.com/temoto/gpio-cdev-go/mock"

	"asyncinput/event"
)

func TestRunEmitsPressAndRelease(t *testing.T) {
	mev := &gpiomock.MockEvent{}
	mev.On("Wait", waitPeriod).Return(gpio.EventData{ID: gpio.EventID(gpio.GPIOEVENT_EVENT_RISING_EDGE), Timestamp: 42}, nil).Once()
	mev.On("Wait", waitPeriod).Return(gpio.EventData{ID: gpio.EventID(gpio.GPIOEVENT_EVENT_FALLING_EDGE), Timestamp: 99}, nil).Once()
	mev.On("Wait", waitPeriod).Return(gpio.EventData{}, gpio.ErrTimeout)

	s := &Source{ev: mev, code: event.KeyEnter, pressedID: gpio.EventID(gpio.GPIOEVENT_EVENT_RISING_EDGE)}

	out := make(chan event.Record, 4)
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() { s.Run(7, out, stop); close(done) }()

	rec1 := <-out
	assert.EqualValues(t, 1, rec1.Value)
	assert.Equal(t, event.KeyEnter, rec1.Code)
	assert.EqualValues(t, 7, rec1.DeviceID)

	rec2 := <-out
	assert.EqualValues(t, 0, rec2.Value)

	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit after stop closed")
	}
}

func TestRunExitsOnEventError(t *testing.T) {
	mev := &gpiomock.MockEvent{}
	mev.On("Wait", waitPeriod).Return(gpio.EventData{}, gpio.ErrClosed)

	s := &Source{ev: mev, code: event.KeyEnter}
	out := make(chan event.Record, 1)
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() { s.Run(1, out, stop); close(done) }()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not exit on a non-timeout error")
	}
	require.Empty(t, out)
}
