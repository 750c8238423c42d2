package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Client-side views of the API responses. These stay decoupled from the
// server packages so the console only depends on the wire format.

type npcSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type needStatus struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Current   int    `json:"current"`
	Max       int    `json:"max"`
	Threshold string `json:"threshold"`
	Urgency   string `json:"urgency"`
}

type moodStatus struct {
	Score    float64 `json:"score"`
	Attitude string  `json:"attitude"`
	SocialDC int     `json:"social_dc"`
}

type npcStatus struct {
	NPC   npcSummary   `json:"npc"`
	Needs []needStatus `json:"needs"`
	Mood  moodStatus   `json:"mood"`
}

type crossingEvent struct {
	NeedID       string `json:"need_id"`
	OldValue     int    `json:"old_value"`
	NewValue     int    `json:"new_value"`
	OldThreshold string `json:"old_threshold"`
	NewThreshold string `json:"new_threshold"`
}

func listNPCs(client *http.Client, baseURL string) ([]string, error) {
	resp, err := client.Get(baseURL + "/v1/npcs")
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var body struct {
		NPCs []string `json:"npcs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.NPCs, nil
}

func createNPC(client *http.Client, baseURL, name string) (*npcStatus, error) {
	payload, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, err
	}

	resp, err := client.Post(baseURL+"/v1/npcs", "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusCreated {
		return nil, apiError(resp)
	}

	var status npcStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

func getStatus(client *http.Client, baseURL, id string) (*npcStatus, error) {
	resp, err := client.Get(baseURL + "/v1/npcs/" + id)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var status npcStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

// getStatusJSON returns the raw status document for clipboard copy.
func getStatusJSON(client *http.Client, baseURL, id string) (string, error) {
	resp, err := client.Get(baseURL + "/v1/npcs/" + id)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return string(raw), nil
	}
	return pretty.String(), nil
}

func satisfyNeed(client *http.Client, baseURL, id, needID string, amount float64) error {
	payload, err := json.Marshal(map[string]interface{}{
		"need_id": needID,
		"amount":  amount,
	})
	if err != nil {
		return err
	}

	resp, err := client.Post(baseURL+"/v1/npcs/"+id+"/satisfy", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

func advanceTime(client *http.Client, baseURL string, hours float64) error {
	payload, err := json.Marshal(map[string]float64{"hours": hours})
	if err != nil {
		return err
	}

	resp, err := client.Post(baseURL+"/v1/simulation/advance", "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

func getEvents(client *http.Client, baseURL, id string, limit int) ([]crossingEvent, error) {
	url := fmt.Sprintf("%s/v1/npcs/%s/events?limit=%d", baseURL, id, limit)
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}

	var body struct {
		Events []crossingEvent `json:"events"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	return body.Events, nil
}

func apiError(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Error)
	}
	return fmt.Errorf("API returned status %d", resp.StatusCode)
}
