package elevutils

import (
	"io"
	"testing"
)

func TestParseCmdArgs(t *testing.T) {
	args := []string{"-config", "bank.yaml", "-id", "lobby", "-broadcast", "127.0.0.1:9999", "-loglevel", "debug"}

	cmdArgs, _, err := ParseCmdArgs("elevator", args, io.Discard)
	if err != nil {
		t.Fatalf("ParseCmdArgs() returned error %v", err)
	}

	expected := CmdArgs{ConfigPath: "bank.yaml", Identifier: "lobby", BroadcastAddress: "127.0.0.1:9999", LogLevel: "debug"}
	if cmdArgs != expected {
		t.Errorf("ParseCmdArgs() = %+v, expected %+v", cmdArgs, expected)
	}
}

func TestParseCmdArgsErrors(t *testing.T) {
	inputs := [][]string{
		{"-nosuchflag"},
		{"-config"},
		{"stray"},
	}

	for _, args := range inputs {
		if _, _, err := ParseCmdArgs("elevator", args, io.Discard); err == nil {
			t.Errorf("ParseCmdArgs(%v) returned nil error", args)
		}
	}
}

func TestGetGitHash(t *testing.T) {
	if GetGitHash() == "" {
		t.Errorf("GetGitHash() returned empty string")
	}
}
