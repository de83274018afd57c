package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Freeeeeet/slot_swapper/internal/calendar"
	"github.com/Freeeeeet/slot_swapper/internal/model"
	"github.com/Freeeeeet/slot_swapper/internal/service"
	"github.com/julienschmidt/httprouter"
)

const maxBodyBytes = 1 << 16

type slotRequest struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type slotPatchRequest struct {
	Title     *string    `json:"title"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Status    *string    `json:"status"`
}

type swapRequestBody struct {
	MySlotID    string `json:"my_slot_id"`
	TheirSlotID string `json:"their_slot_id"`
}

type swapResponseBody struct {
	Accepted *bool `json:"accepted"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	slots, err := s.slots.ListMySlots(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, slots)
}

func (s *Server) handleCreateSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body slotRequest
	if !decodeBody(w, r, &body) {
		return
	}

	slot, err := s.slots.CreateSlot(r.Context(), currentUser(r).ID, service.SlotInput{
		Title:     body.Title,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, slot)
}

func (s *Server) handleGetSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := service.ParseID("slot id", ps.ByName("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	slot, err := s.slots.GetSlot(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, slot)
}

func (s *Server) handleUpdateSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := service.ParseID("slot id", ps.ByName("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var body slotPatchRequest
	if !decodeBody(w, r, &body) {
		return
	}

	patch := service.SlotPatch{
		Title:     body.Title,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
	}
	if body.Status != nil {
		status, err := model.ParseSlotStatus(*body.Status)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		patch.Status = &status
	}

	slot, err := s.slots.UpdateSlot(r.Context(), currentUser(r).ID, id, patch)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, slot)
}

func (s *Server) handleDeleteSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := service.ParseID("slot id", ps.ByName("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if err := s.slots.DeleteSlot(r.Context(), currentUser(r).ID, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSwappable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	slots, err := s.slots.ListSwappableSlots(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, slots)
}

func (s *Server) handleCreateSwapRequest(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body swapRequestBody
	if !decodeBody(w, r, &body) {
		return
	}

	mySlotID, err := service.ParseID("my_slot_id", body.MySlotID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	theirSlotID, err := service.ParseID("their_slot_id", body.TheirSlotID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	req, err := s.swaps.CreateSwapRequest(r.Context(), currentUser(r).ID, mySlotID, theirSlotID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, req)
}

func (s *Server) handleIncoming(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	reqs, err := s.swaps.GetIncomingRequests(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reqs)
}

func (s *Server) handleOutgoing(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	reqs, err := s.swaps.GetOutgoingRequests(r.Context(), currentUser(r).ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reqs)
}

func (s *Server) handleRespond(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := service.ParseID("request id", ps.ByName("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var body swapResponseBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Accepted == nil {
		respondError(w, http.StatusBadRequest, "accepted is required")
		return
	}

	result, err := s.swaps.RespondToSwapRequest(r.Context(), currentUser(r).ID, id, *body.Accepted)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user := currentUser(r)

	slots, err := s.slots.ListMySlots(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var buf bytes.Buffer
	err = calendar.Encode(&buf, user.DisplayName(), slots, s.now())
	if errors.Is(err, calendar.ErrEmpty) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="slots.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
