package preview

import (
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestGenerate_NoArgsNoTags(t *testing.T) {
	got := Generate("hello_world", nil, Options{})
	want := "CTS1+hello_world()!"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestGenerate_ArgsJoinedWithCommas(t *testing.T) {
	got := Generate("set_time_offset", []string{"1500", "1"}, Options{})
	want := "CTS1+set_time_offset(1500,1)!"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestGenerate_SingleArg(t *testing.T) {
	got := Generate("echo_back_args", []string{"ping"}, Options{})
	want := "CTS1+echo_back_args(ping)!"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestGenerate_Timestamp(t *testing.T) {
	at := time.UnixMilli(1767322800123)
	got := Generate("hello_world", nil, Options{
		IncludeTimestamp: true,
		Timestamp:        at,
	})
	want := "CTS1+hello_world()@tssent=1767322800123!"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestGenerate_ZeroTimestampUsesNow(t *testing.T) {
	before := time.Now().UnixMilli()
	got := Generate("hello_world", nil, Options{IncludeTimestamp: true})
	after := time.Now().UnixMilli()

	start := strings.Index(got, "@tssent=")
	if start == -1 {
		t.Fatalf("missing @tssent tag in %q", got)
	}
	numText := strings.TrimSuffix(got[start+len("@tssent="):], "!")
	ms, err := strconv.ParseInt(numText, 10, 64)
	if err != nil {
		t.Fatalf("bad @tssent value %q: %v", numText, err)
	}
	if ms < before || ms > after {
		t.Errorf("@tssent %d outside [%d, %d]", ms, before, after)
	}
}

func TestGenerate_TagOrder(t *testing.T) {
	got := Generate("dump_log", []string{"LOG_SYSTEM"}, Options{
		IncludeTimestamp: true,
		Timestamp:        time.UnixMilli(1000),
		ExecTime:         "2000",
		ResponseFile:     "dump.txt",
		ExtraTags:        map[string]string{"zz": "9", "aa": "1"},
	})
	want := "CTS1+dump_log(LOG_SYSTEM)@tssent=1000@tsexec=2000@resp_fname=dump.txt@aa=1@zz=9!"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestGenerate_PrefixOverride(t *testing.T) {
	got := Generate("hello_world", nil, Options{Prefix: "TEST+"})
	want := "TEST+hello_world()!"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestGenerate_AlwaysTerminated(t *testing.T) {
	variants := []string{
		Generate("a", nil, Options{}),
		Generate("b", []string{"x"}, Options{ResponseFile: "r"}),
		Generate("c", nil, Options{ExtraTags: map[string]string{"k": "v"}}),
	}
	for _, v := range variants {
		if !strings.HasSuffix(v, "!") {
			t.Errorf("%q should end with the frame terminator", v)
		}
	}
}
