package queue

import "testing"

func validMessage() LogCreatedMessage {
	return LogCreatedMessage{
		LogID:        "log-1",
		UserID:       "user-1",
		MedicationID: "med-1",
		MedName:      "Amoxicillin",
		Dosage:       "500mg",
	}
}

func TestLogCreatedMessageValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*LogCreatedMessage)
		wantErr bool
	}{
		{name: "valid message", mutate: func(*LogCreatedMessage) {}},
		{name: "missing log id", mutate: func(m *LogCreatedMessage) { m.LogID = " " }, wantErr: true},
		{name: "missing user id", mutate: func(m *LogCreatedMessage) { m.UserID = "" }, wantErr: true},
		{name: "missing med name", mutate: func(m *LogCreatedMessage) { m.MedName = "" }, wantErr: true},
		{name: "missing dosage", mutate: func(m *LogCreatedMessage) { m.Dosage = "" }, wantErr: true},
		{name: "missing medication id is tolerated", mutate: func(m *LogCreatedMessage) { m.MedicationID = "" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			msg := validMessage()
			tt.mutate(&msg)

			err := msg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
		})
	}
}
