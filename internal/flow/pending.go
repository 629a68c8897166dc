package flow

import (
	"encoding/json"
	"fmt"
)

// Stage names a step of an admin conversation.
type Stage string

const (
	StageImage       Stage = "waiting_for_image"
	StageTitle       Stage = "waiting_for_title"
	StageDescription Stage = "waiting_for_description"
	StagePrice       Stage = "waiting_for_price"
	StageDeleteID    Stage = "waiting_for_product_id_to_delete"
)

// Pending is the per-user flow state. Idle users have no entry at all.
type Pending interface {
	Stage() Stage
}

type AwaitingImage struct{}

type AwaitingTitle struct {
	Image string
}

type AwaitingDescription struct {
	Image string
	Name  string
}

type AwaitingPrice struct {
	Image       string
	Name        string
	Description string
}

type AwaitingDeleteID struct{}

// Unrecognized holds a persisted state this version cannot interpret.
type Unrecognized struct {
	Raw Stage
}

func (AwaitingImage) Stage() Stage       { return StageImage }
func (AwaitingTitle) Stage() Stage       { return StageTitle }
func (AwaitingDescription) Stage() Stage { return StageDescription }
func (AwaitingPrice) Stage() Stage       { return StagePrice }
func (AwaitingDeleteID) Stage() Stage    { return StageDeleteID }
func (u Unrecognized) Stage() Stage      { return u.Raw }

type envelope struct {
	Stage       Stage  `json:"stage"`
	Image       string `json:"image,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Codec stores Pending values as a small JSON envelope keyed by stage.
type Codec struct{}

func (Codec) Encode(p Pending) ([]byte, error) {
	env := envelope{}
	switch v := p.(type) {
	case AwaitingImage, AwaitingDeleteID:
		env.Stage = v.Stage()
	case AwaitingTitle:
		env = envelope{Stage: StageTitle, Image: v.Image}
	case AwaitingDescription:
		env = envelope{Stage: StageDescription, Image: v.Image, Name: v.Name}
	case AwaitingPrice:
		env = envelope{Stage: StagePrice, Image: v.Image, Name: v.Name, Description: v.Description}
	default:
		return nil, fmt.Errorf("flow: cannot encode %T", p)
	}
	return json.Marshal(env)
}

// Decode never fails on an unknown stage; it yields Unrecognized instead.
func (Codec) Decode(data []byte) (Pending, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Unrecognized{}, fmt.Errorf("flow: decode pending: %w", err)
	}
	switch env.Stage {
	case StageImage:
		return AwaitingImage{}, nil
	case StageTitle:
		return AwaitingTitle{Image: env.Image}, nil
	case StageDescription:
		return AwaitingDescription{Image: env.Image, Name: env.Name}, nil
	case StagePrice:
		return AwaitingPrice{Image: env.Image, Name: env.Name, Description: env.Description}, nil
	case StageDeleteID:
		return AwaitingDeleteID{}, nil
	default:
		return Unrecognized{Raw: env.Stage}, nil
	}
}
