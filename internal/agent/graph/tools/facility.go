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

type FetchFacilityDetailsInput struct {
	AccountID  string `json:"account_id,omitempty"`
	FacilityID string `json:"facility_id,omitempty"`
}

type FetchFacilityDetailsOutput struct {
	FacilityOverview []model.FacilityOverview `json:"facility_overview"`
	Error            string                   `json:"error,omitempty"`
	Message          string                   `json:"message,omitempty"`
}

func createFetchFacilityDetailsTool(store *data.Store) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolFetchFacilityDetails,
			Desc: "Retrieve facility related information: medical licenses, agreements, shipping address and status. With facility_id returns that facility; with only account_id returns all facilities on the account.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"account_id": {
					Type: "string",
					Desc: "Account ID owning the facilities (e.g. A-011977763).",
				},
				"facility_id": {
					Type: "string",
					Desc: "Facility ID for a specific facility (e.g. F-013203268).",
				},
			}),
		},
		func(ctx context.Context, in *FetchFacilityDetailsInput) (*FetchFacilityDetailsOutput, error) {
			if in.AccountID == "" && in.FacilityID == "" {
				return &FetchFacilityDetailsOutput{
					FacilityOverview: []model.FacilityOverview{},
					Error:            ErrCodeInvalidArgument,
					Message:          "either account_id or facility_id is required",
				}, nil
			}

			if in.FacilityID != "" {
				fac, err := store.FacilityByID(in.FacilityID)
				if err != nil {
					if errors.Is(err, errx.ErrNotFound) {
						return &FetchFacilityDetailsOutput{
							FacilityOverview: []model.FacilityOverview{},
							Error:            ErrCodeNotFound,
							Message:          "no facility found for the given identifier",
						}, nil
					}
					return nil, fmt.Errorf("%w: fetch facility details: %v", errx.ErrToolExecution, err)
				}
				return &FetchFacilityDetailsOutput{
					FacilityOverview: []model.FacilityOverview{*fac},
				}, nil
			}

			facs, err := store.FacilitiesByAccountID(in.AccountID)
			if err != nil {
				return nil, fmt.Errorf("%w: fetch facilities: %v", errx.ErrToolExecution, err)
			}
			return &FetchFacilityDetailsOutput{FacilityOverview: facs}, nil
		},
	)
}
