package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/medbook/internal/domain/appointment"
	"github.com/dmehra2102/prod-golang-projects/medbook/pkg/metrics"
)

// Event kinds mirror the topics the downstream notification consumer listens
// on.
const (
	EventAppointmentCreated   = "appointment-created"
	EventAppointmentCancelled = "appointment-cancelled"
	EventAppointmentReminder  = "appointment-reminder"
)

// Event is the status-change fact emitted after a successful booking,
// cancellation, or reminder trigger. Delivery and retry are the consumer's
// concern.
type Event struct {
	Kind            string `json:"kind"`
	AppointmentID   string `json:"appointmentId"`
	PatientID       string `json:"patientId"`
	PatientEmail    string `json:"patientEmail,omitempty"`
	DoctorID        string `json:"doctorId"`
	DoctorName      string `json:"doctorName,omitempty"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Status          string `json:"status"`
}

func newEvent(kind string, a *appointment.Appointment, patientEmail, doctorName string) Event {
	return Event{
		Kind:            kind,
		AppointmentID:   a.ID.String(),
		PatientID:       a.UserID.String(),
		PatientEmail:    patientEmail,
		DoctorID:        a.DoctorID.String(),
		DoctorName:      doctorName,
		AppointmentDate: a.Date,
		AppointmentTime: a.StartTime,
		Status:          string(a.Status),
	}
}

// Notifier publishes events without ever blocking or failing the scheduling
// operation that produced them.
type Notifier interface {
	Publish(ctx context.Context, e Event)
}

// Sink delivers a single event. Implementations may talk to a message broker;
// the default just logs.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Send(_ context.Context, e Event) error {
	s.log.Info("appointment event",
		zap.String("kind", e.Kind),
		zap.String("appointment_id", e.AppointmentID),
		zap.String("doctor_id", e.DoctorID),
		zap.String("date", e.AppointmentDate),
		zap.String("time", e.AppointmentTime),
		zap.String("status", e.Status),
	)
	return nil
}

// AsyncNotifier decouples event delivery from the request path through a
// bounded buffer and a single worker goroutine. When the buffer is full the
// event is dropped and counted; appointment state is never rolled back for a
// notification failure.
type AsyncNotifier struct {
	sink    Sink
	log     *zap.Logger
	metrics *metrics.Collector
	events  chan Event
	done    chan struct{}
}

func NewAsyncNotifier(sink Sink, bufferSize int, m *metrics.Collector, log *zap.Logger) *AsyncNotifier {
	n := &AsyncNotifier{
		sink:    sink,
		log:     log,
		metrics: m,
		events:  make(chan Event, bufferSize),
		done:    make(chan struct{}),
	}
	go n.worker()
	return n
}

func (n *AsyncNotifier) Publish(_ context.Context, e Event) {
	select {
	case n.events <- e:
		if n.metrics != nil {
			n.metrics.NotificationsTotal.WithLabelValues(e.Kind).Inc()
		}
	default:
		if n.metrics != nil {
			n.metrics.NotificationsDropped.Inc()
		}
		n.log.Warn("notification buffer full, dropping event",
			zap.String("kind", e.Kind),
			zap.String("appointment_id", e.AppointmentID),
		)
	}
}

func (n *AsyncNotifier) Shutdown() {
	close(n.events)
	select {
	case <-n.done:
	case <-time.After(10 * time.Second):
		n.log.Warn("notifier shutdown timed out; some events may be lost")
	}
}

func (n *AsyncNotifier) worker() {
	defer close(n.done)
	for e := range n.events {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := n.sink.Send(ctx, e); err != nil {
			n.log.Error("failed to deliver appointment event",
				zap.String("kind", e.Kind),
				zap.Error(err),
			)
		}
		cancel()
	}
}
