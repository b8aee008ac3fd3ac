package elevmetadata

import (
	"encoding/json"

	"github.com/dinaMadelen/elevdispatch/internal/logger"
	"github.com/xyproto/randomstring"
)

var Log = logger.GetLogger()

const IDENTIFIER_DEFAULT_LEN = 10

// Constant facts about a running bank, sent along with every broadcast event
type BankMetaData struct {
	SoftwareVersion string `json:"software_version"`
	Identifier      string `json:"identifier"`
	NumFloors       int    `json:"num_floors"`
	NumCars         int    `json:"num_cars"`
}

func New(softwareVersion string, identifier string, numFloors int, numCars int) *BankMetaData {
	if identifier == "" {
		identifier = randomstring.EnglishFrequencyString(IDENTIFIER_DEFAULT_LEN) //this should be random enough
		Log.Warn().Msgf("No bank identifier provided, generated random identifier \"%v\"", identifier)
	}
	return &BankMetaData{
		SoftwareVersion: softwareVersion,
		Identifier:      identifier,
		NumFloors:       numFloors,
		NumCars:         numCars,
	}
}

func (bankMetaData *BankMetaData) String() string {
	jsonData, err := json.Marshal(bankMetaData)

	if err != nil {
		Log.Error().Msg("Error Serialising BankMetaData Object to JSON")
		return ""
	}
	return string(jsonData)
}
