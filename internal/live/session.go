package live

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/gridwerk/xlform-go/xlform"
)

// Request is one client message. Op selects the action: "set" stores a
// value, "eval" evaluates a formula, "translate" rewrites one between
// notations.
type Request struct {
	Op      string `json:"op"`
	Cell    string `json:"cell,omitempty"`
	Value   any    `json:"value,omitempty"`
	Formula string `json:"formula,omitempty"`
	To      string `json:"to,omitempty"`
}

// Response is the reply to one Request.
type Response struct {
	Session string `json:"session"`
	Cell    string `json:"cell,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Value   any    `json:"value,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Session is one connection's private evaluation state.
type Session struct {
	ID   string
	grid *xlform.MapGrid
}

func NewSession() *Session {
	return &Session{ID: uuid.NewString(), grid: xlform.NewMapGrid()}
}

// Handle services one raw request and returns the encoded reply.
func (s *Session) Handle(raw []byte) []byte {
	resp := Response{Session: s.ID}

	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		resp.Error = fmt.Sprintf("bad request: %v", err)
		return encode(resp)
	}

	switch req.Op {
	case "set":
		s.handleSet(req, &resp)
	case "eval":
		s.handleEval(req, &resp)
	case "translate":
		s.handleTranslate(req, &resp)
	default:
		resp.Error = fmt.Sprintf("unknown op %q", req.Op)
	}
	return encode(resp)
}

// handleSet stores a cell value typed by its JSON type. A null value
// clears the cell; strings holding error literals store typed errors.
func (s *Session) handleSet(req Request, resp *Response) {
	pos, err := xlform.ParseCellName(req.Cell)
	if err != nil {
		resp.Error = err.Error()
		return
	}
	resp.Cell = pos.Name()

	switch v := req.Value.(type) {
	case nil:
		s.grid.Set(pos.Row, pos.Col, xlform.Value{})
	case float64:
		s.grid.SetNumber(pos.Row, pos.Col, v)
	case bool:
		s.grid.SetBool(pos.Row, pos.Col, v)
	case string:
		if code, ok := xlform.ParseErrorCode(v); ok {
			s.grid.SetError(pos.Row, pos.Col, code)
		} else {
			s.grid.SetText(pos.Row, pos.Col, v)
		}
	default:
		resp.Error = fmt.Sprintf("unsupported value type %T", req.Value)
		return
	}

	resp.Kind, resp.Value = wireValue(s.grid.CellValue(pos.Row, pos.Col))
}

func (s *Session) handleEval(req Request, resp *Response) {
	anchor, ok := anchorOf(req, resp)
	if !ok {
		return
	}
	resp.Cell = anchor.Name()

	f := xlform.NewFormula(anchor, xlform.NotationA1, req.Formula)
	v, err := f.Eval(xlform.NewContext(s.grid, anchor))
	if err != nil {
		resp.Error = err.Error()
		return
	}
	resp.Kind, resp.Value = wireValue(v)
}

func (s *Session) handleTranslate(req Request, resp *Response) {
	anchor, ok := anchorOf(req, resp)
	if !ok {
		return
	}
	resp.Cell = anchor.Name()

	var dir xlform.Direction
	switch req.To {
	case "r1c1":
		dir = xlform.LetterToOffset
	case "a1":
		dir = xlform.OffsetToLetter
	default:
		resp.Error = fmt.Sprintf("unknown target notation %q", req.To)
		return
	}
	resp.Kind = "text"
	resp.Value = xlform.Translate(req.Formula, dir, anchor)
}

// anchorOf resolves the request's cell to an anchor position, defaulting
// to A1 when absent.
func anchorOf(req Request, resp *Response) (xlform.Position, bool) {
	if req.Cell == "" {
		return xlform.Position{Row: 1, Col: 1}, true
	}
	pos, err := xlform.ParseCellName(req.Cell)
	if err != nil {
		resp.Error = err.Error()
		return xlform.Position{}, false
	}
	return pos, true
}

// wireValue renders a Value as its protocol kind name and JSON payload.
func wireValue(v xlform.Value) (string, any) {
	switch v.Kind() {
	case xlform.KindNumber:
		return "number", v.Number()
	case xlform.KindText:
		return "text", v.Text()
	case xlform.KindBool:
		return "bool", v.Bool()
	case xlform.KindError:
		return "error", v.ErrorCode().String()
	case xlform.KindRef:
		return "ref", v.String()
	default:
		return "empty", nil
	}
}

func encode(resp Response) []byte {
	data, err := json.Marshal(resp)
	if err != nil {
		log.Printf("encode response: %v", err)
		return []byte(`{"error":"internal encoding failure"}`)
	}
	return data
}
