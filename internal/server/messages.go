package server

import (
	"encoding/json"
	"fmt"

	"github.com/muurk/docon/internal/config"
	"github.com/muurk/docon/internal/control"
	"github.com/muurk/docon/internal/fault"
)

// Operations accepted in Request.Op
const (
	OpOn      = "on"
	OpOff     = "off"
	OpControl = "control" // on/off taken from Request.On
	OpPulse   = "pulse"
	OpInvert  = "invert"
	OpMap     = "map"
	OpCfg     = "cfg"
	OpStatus  = "status"
	OpChannel = "channel"
	OpConfig  = "config"
)

// Controller is the set of operations the endpoint exposes.
// *control.Service implements it.
type Controller interface {
	ControlDo(req control.ControlRequest) (*control.ControlResult, error)
	PulseDo(req control.PulseRequest) (*control.PulseResult, error)
	ToggleChannelInvert(channel int) (*control.InvertResult, error)
	SetChannelMapping(req control.MappingRequest) (*control.MappingResult, error)
	UpdateConnectionConfig(req control.ConnectionRequest) (*control.ConnectionResult, error)
	GetDoStatus() (*control.Status, error)
	GetChannelStatus(channel int) (*control.ChannelStatus, error)
	GetConfig() config.Settings
}

// Request is one JSON text frame sent by a client.
type Request struct {
	ID         string  `json:"id,omitempty"`
	Op         string  `json:"op"`
	Channel    int     `json:"channel,omitempty"`
	On         *bool   `json:"on,omitempty"`
	DurationMs int     `json:"durationMs,omitempty"`
	Coil       *int    `json:"coil,omitempty"`
	IP         *string `json:"ip,omitempty"`
	Port       *int    `json:"port,omitempty"`
	UnitID     *int    `json:"unitId,omitempty"`
}

// Response answers exactly one Request.
type Response struct {
	ID      string `json:"id,omitempty"`
	OK      bool   `json:"ok"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`    // fault kind when !OK
	Warning string `json:"warning,omitempty"` // e.g. settings not saved
}

// ParseRequest decodes a text frame. Decoding failures are validation faults.
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fault.NewValidationError(fmt.Sprintf("malformed request: %v", err))
	}
	if req.Op == "" {
		return &req, fault.NewValidationError("missing op")
	}
	return &req, nil
}

// Dispatch runs req against svc and builds the reply.
func Dispatch(svc Controller, req *Request) *Response {
	result, persist, err := Execute(svc, req)
	return NewResponse(req.ID, result, persist, err)
}

// NewResponse builds the reply for an executed request. persist is a
// settings save failure; it becomes a warning and does not fail the reply.
func NewResponse(id string, result any, persist, err error) *Response {
	resp := &Response{ID: id, Result: result}
	if persist != nil {
		resp.Warning = fault.ShortMessage(persist)
	}
	if err != nil {
		return withError(resp, err)
	}
	resp.OK = true
	return resp
}

// ErrorResponse builds a failed reply for err.
func ErrorResponse(id string, err error) *Response {
	return withError(&Response{ID: id}, err)
}

func withError(resp *Response, err error) *Response {
	resp.OK = false
	resp.Error = fault.ShortMessage(err)
	resp.Kind = fault.KindOf(err)
	return resp
}

// Execute runs one request. It returns the operation result (nil on most
// failures), a settings save failure and the operation error. cfg may
// return both a result and an error when the reconnect fails.
func Execute(svc Controller, req *Request) (any, error, error) {
	switch req.Op {
	case OpOn, OpOff:
		res, err := svc.ControlDo(control.ControlRequest{Channel: req.Channel, On: req.Op == OpOn})
		return orNil(res, err), nil, err

	case OpControl:
		if req.On == nil {
			return nil, nil, fault.NewValidationError("control requires \"on\"")
		}
		res, err := svc.ControlDo(control.ControlRequest{Channel: req.Channel, On: *req.On})
		return orNil(res, err), nil, err

	case OpPulse:
		res, err := svc.PulseDo(control.PulseRequest{Channel: req.Channel, DurationMs: req.DurationMs})
		return orNil(res, err), nil, err

	case OpInvert:
		res, err := svc.ToggleChannelInvert(req.Channel)
		if err != nil {
			return nil, nil, err
		}
		return res, res.Persist, nil

	case OpMap:
		if req.Coil == nil {
			return nil, nil, fault.NewValidationError("map requires \"coil\"")
		}
		res, err := svc.SetChannelMapping(control.MappingRequest{Channel: req.Channel, Coil: *req.Coil})
		if err != nil {
			return nil, nil, err
		}
		return res, res.Persist, nil

	case OpCfg:
		res, err := svc.UpdateConnectionConfig(control.ConnectionRequest{
			IP:     req.IP,
			Port:   req.Port,
			UnitID: req.UnitID,
		})
		// A failed reconnect still returns the saved settings
		if res == nil {
			return nil, nil, err
		}
		return res, res.Persist, err

	case OpStatus:
		res, err := svc.GetDoStatus()
		return orNil(res, err), nil, err

	case OpChannel:
		res, err := svc.GetChannelStatus(req.Channel)
		return orNil(res, err), nil, err

	case OpConfig:
		return svc.GetConfig(), nil, nil

	default:
		return nil, nil, fault.NewValidationError(fmt.Sprintf("unknown op %q", req.Op))
	}
}

// orNil keeps typed nil pointers out of Response.Result.
func orNil[T any](res *T, err error) any {
	if err != nil || res == nil {
		return nil
	}
	return res
}
