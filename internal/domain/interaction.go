package domain

import (
	"context"
	"fmt"

	"github.com/questx-lab/taskmaster/internal/domain/lifecycle"
	"github.com/questx-lab/taskmaster/internal/model"
	"github.com/questx-lab/taskmaster/pkg/customid"
	"github.com/questx-lab/taskmaster/pkg/errorx"
)

type InteractionDomain interface {
	Button(context.Context, *model.ButtonInteractionRequest) (*model.ButtonInteractionResponse, error)
}

type interactionDomain struct {
	giveawayDomain GiveawayDomain
	activityDomain ActivityDomain
}

func NewInteractionDomain(giveawayDomain GiveawayDomain, activityDomain ActivityDomain) *interactionDomain {
	return &interactionDomain{
		giveawayDomain: giveawayDomain,
		activityDomain: activityDomain,
	}
}

// Button routes a button press to the operation named by its custom id. The
// returned message is shown to the member only.
func (d *interactionDomain) Button(
	ctx context.Context, req *model.ButtonInteractionRequest,
) (*model.ButtonInteractionResponse, error) {
	id, err := customid.Parse(req.CustomID)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid custom id")
	}

	var message string
	switch fmt.Sprintf("%s:%s", id.Kind, id.Action) {
	case lifecycle.KindGiveaway + ":" + ActionEnter:
		resp, err := d.giveawayDomain.Enter(ctx, &model.EnterGiveawayRequest{MessageID: id.Target, UserID: req.UserID})
		if err != nil {
			return nil, err
		}

		message = "You have entered the giveaway. Good luck!"
		if !resp.Entered {
			message = "You are already entered in this giveaway."
		}

	case lifecycle.KindActivity + ":" + ActionSignup:
		resp, err := d.activityDomain.Signup(ctx, &model.SignupActivityRequest{ActivityID: id.Target, UserID: req.UserID})
		if err != nil {
			return nil, err
		}

		message = "You are signed up, we will remind you before it starts."
		if !resp.SignedUp {
			message = "You are already signed up."
		}

	case lifecycle.KindActivity + ":" + ActionLeave:
		resp, err := d.activityDomain.Leave(ctx, &model.LeaveActivityRequest{ActivityID: id.Target, UserID: req.UserID})
		if err != nil {
			return nil, err
		}

		message = "You are no longer signed up."
		if !resp.Left {
			message = "You were not signed up."
		}

	default:
		return nil, errorx.New(errorx.BadRequest, "Unsupported interaction %s", req.CustomID)
	}

	return &model.ButtonInteractionResponse{Message: message}, nil
}
