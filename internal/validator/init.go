package validator

import (
	"ctchen222/Hex/pkg/proto"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterStructValidation(clientMessageRules, proto.ClientToServerMessage{})
}

// clientMessageRules holds the rules that depend on the message type.
func clientMessageRules(sl validator.StructLevel) {
	msg := sl.Current().Interface().(proto.ClientToServerMessage)
	switch msg.Type {
	case proto.TypeMove:
		if len(msg.Position) != 2 {
			sl.ReportError(msg.Position, "Position", "position", "required_for_move", "")
		}
	case proto.TypeSwap, proto.TypeResign:
		if len(msg.Position) != 0 {
			sl.ReportError(msg.Position, "Position", "position", "excluded_for_"+msg.Type, "")
		}
	}
}

func GetValidator() *validator.Validate {
	return validate
}

// Struct validates v and flattens validation failures into one readable error.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid message: %s", strings.Join(msgs, "; "))
}
