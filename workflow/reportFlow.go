package workflow

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mmdatafocus/cityreport_bot/config"
	"github.com/mmdatafocus/cityreport_bot/mailer"
	"github.com/mmdatafocus/cityreport_bot/media"
	"github.com/mmdatafocus/cityreport_bot/models"
	"github.com/mmdatafocus/cityreport_bot/session"
	"github.com/mmdatafocus/cityreport_bot/utils"
	"github.com/sirupsen/logrus"
)

const descriptionMaxRunes = 300

// EventKind discriminates inbound payloads.
type EventKind string

const (
	EventText     EventKind = "text"
	EventPhoto    EventKind = "photo"
	EventLocation EventKind = "location"
)

// Event is one inbound message from a conversation, already normalized by
// the transport.
type Event struct {
	ChatID int64
	Handle string

	Kind EventKind
	Text string

	// PhotoFileID and PhotoUniqueID identify the photo on the transport
	// side; the unique id is stable and safe for filenames.
	PhotoFileID   string
	PhotoUniqueID string

	Lat float64
	Lon float64
}

// Choice is a lightweight reply affordance rendered by the transport.
type Choice struct {
	Label           string
	RequestLocation bool
}

// Outgoing is one reply to the conversation. A zero Outgoing means the
// machine has nothing to say for this event.
type Outgoing struct {
	Text    string
	Choices []Choice
}

func (o Outgoing) Empty() bool {
	return o.Text == ""
}

// PhotoFetcher pulls photo bytes from the transport by file id.
type PhotoFetcher interface {
	Fetch(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// Dispatcher delivers the finalized notification. It reports the outcome
// as a value and never fails the pipeline.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg mailer.Message) mailer.Result
}

// Machine drives one conversation through photo, description and optional
// location, then finalizes. Per-conversation serialization is the
// transport's responsibility; the machine itself holds no state outside
// the session store.
type Machine struct {
	Sessions session.Store
	Media    media.Store
	Photos   PhotoFetcher
	Mailer   Dispatcher
	Reports  models.Store
	Logger   *logrus.Logger
}

const (
	promptPhoto       = "Send a photo of the problem in a single message (as a photo, not as a file)."
	needPhoto         = "Please send a photo."
	promptDescription = "Briefly describe the problem (up to 300 characters)."
	needDescription   = "Please describe the problem in a text message."
	promptLocation    = "Attach your location (or press Skip)."
	needLocation      = "Please share a location or press Skip."
	recordSaveFailed  = "Sorry, your report could not be saved. Please try again later."

	ChoiceSendLocation = "Send location"
	ChoiceSkip         = "Skip"
)

func locationChoices() []Choice {
	return []Choice{
		{Label: ChoiceSendLocation, RequestLocation: true},
		{Label: ChoiceSkip},
	}
}

// Start begins a fresh submission, discarding any in-progress draft for the
// conversation without warning.
func (m *Machine) Start(ctx context.Context, chatID int64) (Outgoing, error) {
	err := m.Sessions.Put(ctx, chatID, session.Session{State: session.StateAwaitingPhoto})
	if err != nil {
		return Outgoing{}, err
	}
	return Outgoing{Text: promptPhoto}, nil
}

// InProgress reports whether the conversation has an active submission.
func (m *Machine) InProgress(ctx context.Context, chatID int64) (bool, error) {
	s, err := m.Sessions.Get(ctx, chatID)
	if err != nil {
		return false, err
	}
	return s.State != session.StateIdle, nil
}

// Handle processes one inbound event against the conversation's current
// step. Wrong-typed input re-prompts without advancing.
func (m *Machine) Handle(ctx context.Context, ev Event) (Outgoing, error) {
	s, err := m.Sessions.Get(ctx, ev.ChatID)
	if err != nil {
		return Outgoing{}, err
	}

	switch s.State {
	case session.StateAwaitingPhoto:
		return m.handlePhotoStep(ctx, ev, s)
	case session.StateAwaitingDescription:
		return m.handleDescriptionStep(ctx, ev, s)
	case session.StateAwaitingLocation:
		return m.handleLocationStep(ctx, ev, s)
	default:
		return Outgoing{}, nil
	}
}

func (m *Machine) handlePhotoStep(ctx context.Context, ev Event, s session.Session) (Outgoing, error) {
	if ev.Kind != EventPhoto {
		return Outgoing{Text: needPhoto}, nil
	}

	src, err := m.Photos.Fetch(ctx, ev.PhotoFileID)
	if err != nil {
		config.LogError(m.Logger, "workflow", "handlePhotoStep", "fetch", ev.PhotoFileID, err)
		return Outgoing{Text: needPhoto}, nil
	}
	defer src.Close()

	name := fmt.Sprintf("%d_%s.jpg", ev.ChatID, ev.PhotoUniqueID)
	ref, err := m.Media.Save(ctx, name, src)
	if err != nil {
		config.LogError(m.Logger, "workflow", "handlePhotoStep", "save", name, err)
		return Outgoing{Text: needPhoto}, nil
	}

	s.Draft.PhotoPath = ref
	s.State = session.StateAwaitingDescription
	if err := m.Sessions.Put(ctx, ev.ChatID, s); err != nil {
		return Outgoing{}, err
	}
	return Outgoing{Text: promptDescription}, nil
}

func (m *Machine) handleDescriptionStep(ctx context.Context, ev Event, s session.Session) (Outgoing, error) {
	if ev.Kind != EventText || strings.TrimSpace(ev.Text) == "" {
		return Outgoing{Text: needDescription}, nil
	}

	s.Draft.Description = utils.TruncateRunes(ev.Text, descriptionMaxRunes)
	s.State = session.StateAwaitingLocation
	if err := m.Sessions.Put(ctx, ev.ChatID, s); err != nil {
		return Outgoing{}, err
	}
	return Outgoing{Text: promptLocation, Choices: locationChoices()}, nil
}

func (m *Machine) handleLocationStep(ctx context.Context, ev Event, s session.Session) (Outgoing, error) {
	switch {
	case ev.Kind == EventLocation:
		lat, lon := ev.Lat, ev.Lon
		s.Draft.Lat = &lat
		s.Draft.Lon = &lon
	case ev.Kind == EventText && strings.EqualFold(strings.TrimSpace(ev.Text), ChoiceSkip):
		// lat/lon stay absent
	default:
		return Outgoing{Text: needLocation, Choices: locationChoices()}, nil
	}

	return m.finalize(ctx, ev, s.Draft)
}
