package models

import "testing"

func TestAcState_Parameter(t *testing.T) {
	cases := []struct {
		state AcState
		want  string
	}{
		{DefaultAcState(), "26,2,1,on"},
		{AcState{Temperature: 16, Mode: AcModeAuto, FanSpeed: FanSpeedLow, Power: PowerOff}, "16,1,2,off"},
		{AcState{Temperature: 30, Mode: AcModeHeat, FanSpeed: FanSpeedHigh, Power: PowerOn}, "30,5,4,on"},
		{AcState{Temperature: 22, Mode: AcModeDry, FanSpeed: FanSpeedMedium, Power: PowerOn}, "22,3,3,on"},
		{AcState{Temperature: 25, Mode: AcModeFan, FanSpeed: FanSpeedAuto, Power: PowerOn}, "25,4,1,on"},
	}
	for _, tc := range cases {
		if got := tc.state.Parameter(); got != tc.want {
			t.Fatalf("Parameter(%+v) = %q, want %q", tc.state, got, tc.want)
		}
	}
}

func TestAcState_Validate(t *testing.T) {
	valid := DefaultAcState()
	if err := valid.Validate(); err != nil {
		t.Fatalf("default state should be valid: %v", err)
	}

	cases := map[string]AcState{
		"too cold":  {Temperature: 15, Mode: AcModeCool, FanSpeed: FanSpeedAuto, Power: PowerOn},
		"too hot":   {Temperature: 31, Mode: AcModeCool, FanSpeed: FanSpeedAuto, Power: PowerOn},
		"bad mode":  {Temperature: 26, Mode: "turbo", FanSpeed: FanSpeedAuto, Power: PowerOn},
		"bad fan":   {Temperature: 26, Mode: AcModeCool, FanSpeed: "max", Power: PowerOn},
		"bad power": {Temperature: 26, Mode: AcModeCool, FanSpeed: FanSpeedAuto, Power: "standby"},
	}
	for name, st := range cases {
		if err := st.Validate(); err == nil {
			t.Fatalf("%s: expected error for %+v", name, st)
		}
	}
}

func TestSettings_Helpers(t *testing.T) {
	var zero Settings
	if !zero.IsZero() || zero.Configured() {
		t.Fatalf("zero settings should be empty and unconfigured")
	}
	s := Settings{Token: "t", Secret: "s", UseProxy: true, MeterDeviceID: "m"}
	if !s.Configured() || s.IsZero() {
		t.Fatalf("expected configured settings")
	}
	if s.Credentials() != (Credentials{Token: "t", Secret: "s", UseProxy: true}) {
		t.Fatalf("unexpected credentials: %+v", s.Credentials())
	}
}
