package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/agent-poc-v1/server/internal/agent/model"
	errx "github.com/agent-poc-v1/server/internal/core/error"
	"github.com/agent-poc-v1/server/internal/data"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

type FetchAccountDetailsInput struct {
	AccountID string `json:"account_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

type FetchAccountDetailsOutput struct {
	AccountOverview []model.AccountOverview `json:"account_overview"`
	Error           string                  `json:"error,omitempty"`
	Message         string                  `json:"message,omitempty"`
}

func createFetchAccountDetailsTool(store *data.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolFetchAccountDetails,
			Desc: "Retrieve account related information: status, billing, loyalty tier, rewards and address. Use for any question about the account, balance, points, tier or rewards.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"account_id": {
					Type: "string",
					Desc: "Account ID to fetch details for (e.g. A-011977763). Preferred when available.",
				},
				"user_id": {
					Type: "string",
					Desc: "User ID owning the account. Used when no account ID is known.",
				},
			}),
		},
		func(ctx context.Context, in *FetchAccountDetailsInput) (*FetchAccountDetailsOutput, error) {
			if in.AccountID == "" && in.UserID == "" {
				return &FetchAccountDetailsOutput{
					AccountOverview: []model.AccountOverview{},
					Error:           ErrCodeInvalidArgument,
					Message:         "either account_id or user_id is required",
				}, nil
			}

			var (
				acc *model.AccountOverview
				err error
			)
			if in.AccountID != "" {
				acc, err = store.AccountByID(in.AccountID)
			} else {
				acc, err = store.AccountByUserID(in.UserID)
			}
			if err != nil {
				if errors.Is(err, errx.ErrNotFound) {
					return &FetchAccountDetailsOutput{
						AccountOverview: []model.AccountOverview{},
						Error:           ErrCodeNotFound,
						Message:         "no account found for the given identifier",
					}, nil
				}
				return nil, fmt.Errorf("%w: fetch account details: %v", errx.ErrToolExecution, err)
			}

			return &FetchAccountDetailsOutput{
				AccountOverview: []model.AccountOverview{*acc},
			}, nil
		},
	)
}
