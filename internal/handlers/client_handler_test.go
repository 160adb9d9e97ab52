package handlers

import (
	"encoding/json"
	"testing"

	"github.com/dogdesk/DogDeskBack/internal/models"
)

func TestClientDetailResponseShape(t *testing.T) {
	detail := models.ClientDetail{
		Client: models.Client{ID: 9, Name: "Avery"},
		Dogs:   []models.Dog{{ID: 3, ClientID: 9, Name: "Pepper"}},
	}

	raw, err := json.Marshal(detail)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	// Client fields flatten to the top level with the dog list alongside.
	if decoded["id"] != float64(9) || decoded["name"] != "Avery" {
		t.Fatalf("unexpected client fields: %s", raw)
	}
	dogs, ok := decoded["dogs"].([]any)
	if !ok || len(dogs) != 1 {
		t.Fatalf("expected one dog in detail, got %s", raw)
	}
}
