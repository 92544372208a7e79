// Copyright 2025 The SatQuest Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"errors"
	"net/http"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/satquest/satquest/internal/model"
	"github.com/satquest/satquest/internal/store"
)

type rewardRequest struct {
	RecipientID      string `json:"recipient_id"`
	LightningAddress string `json:"lightning_address"`
}

// handlePayReward pays the bounty of an issue. The reward record, the issue
// completion and the payment outcome are written in one transaction.
func (a *API) handlePayReward(w http.ResponseWriter, r *http.Request) {
	project := a.ownedProject(w, r, "manage rewards")
	if project == nil {
		return
	}
	issueID, ok := pathID(r, "issueID")
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid issue ID")
		return
	}

	var req rewardRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.RecipientID == "" || req.LightningAddress == "" {
		writeError(w, http.StatusBadRequest, "Recipient ID and Lightning address are required")
		return
	}

	reward := &model.Reward{
		IssueID:          issueID,
		ProjectID:        project.ID,
		RecipientID:      req.RecipientID,
		LightningAddress: req.LightningAddress,
	}
	err := a.store.PayReward(r.Context(), reward, a.pay)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Issue not found")
		return
	case errors.Is(err, store.ErrAlreadyCompleted):
		writeError(w, http.StatusConflict, "Issue has already been rewarded")
		return
	case errors.Is(err, store.ErrPaymentFailed):
		log.FromContext(r.Context()).Error(err, "Reward payment failed", "issue", issueID, "reward", reward.ID)
		a.recordReward(false)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":  "Reward payment failed",
			"reward": reward,
		})
		return
	case err != nil:
		internalError(w, r, err, "Failed to create reward")
		return
	}

	a.recordReward(true)
	log.FromContext(r.Context()).Info("Reward paid", "issue", issueID, "reward", reward.ID, "amount", reward.Amount)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Reward processed successfully",
		"reward":  reward,
	})
}

func (a *API) recordReward(paid bool) {
	if a.recorder != nil {
		a.recorder.RecordReward(paid)
	}
}
