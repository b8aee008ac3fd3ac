package elevmetadata

import (
	"testing"

	"github.com/dinaMadelen/elevdispatch/internal/logger"
	"github.com/rs/zerolog"
)

func TestString(t *testing.T) {
	metadata := BankMetaData{
		SoftwareVersion: "smj2acjkvv4h1zkwjz2ocsn2lkfrjmzf9qn4i2m3",
		Identifier:      "uwvvblrtct",
		NumFloors:       10,
		NumCars:         2,
	}

	jsonString := "{\"software_version\":\"smj2acjkvv4h1zkwjz2ocsn2lkfrjmzf9qn4i2m3\",\"identifier\":\"uwvvblrtct\",\"num_floors\":10,\"num_cars\":2}"

	if metadata.String() != jsonString {
		t.Errorf("String() = %s, expected %s", metadata.String(), jsonString)
	}
}

func TestNewGeneratesIdentifier(t *testing.T) {
	_ = logger.GetLoggerConfigured(zerolog.Disabled)

	metadata := New("dev", "", 10, 2)
	if len(metadata.Identifier) != IDENTIFIER_DEFAULT_LEN {
		t.Errorf("New() identifier = %q, expected %d random characters", metadata.Identifier, IDENTIFIER_DEFAULT_LEN)
	}

	named := New("dev", "tower-a", 10, 2)
	if named.Identifier != "tower-a" {
		t.Errorf("New() identifier = %q, expected tower-a", named.Identifier)
	}
}
