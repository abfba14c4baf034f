package authz

import "testing"

func TestOracleMatch(t *testing.T) {
	p := OracleMatch{OracleID: "x509::CN=oracle-main"}

	if !p.Authorize("x509::CN=oracle-main", ActionVerifyMilestone) {
		t.Error("configured oracle rejected")
	}
	if !p.Authorize("x509::CN=Backup-ORACLE-2", ActionVerifyMilestone) {
		t.Error("substring fallback rejected an oracle-labeled identity")
	}
	if p.Authorize("x509::CN=random-donor", ActionVerifyMilestone) {
		t.Error("unrelated identity accepted")
	}
	if p.Authorize("", ActionVerifyMilestone) {
		t.Error("empty identity accepted")
	}
}

func TestOracleMatchStrict(t *testing.T) {
	p := OracleMatch{OracleID: "verifier-1", Strict: true}

	if !p.Authorize("verifier-1", ActionVerifyMilestone) {
		t.Error("exact match rejected in strict mode")
	}
	if p.Authorize("some-oracle-node", ActionVerifyMilestone) {
		t.Error("strict mode honored the substring fallback")
	}
}

func TestPerActionDefaultsOpen(t *testing.T) {
	p := Default("verifier-1")

	if p.Authorize("nobody", ActionVerifyMilestone) {
		t.Error("verification open to arbitrary callers")
	}
	// Status overrides and releases are ungated in the default policy.
	if !p.Authorize("nobody", ActionUpdateStatus) {
		t.Error("status update gated by default")
	}
	if !p.Authorize("nobody", ActionReleaseFunds) {
		t.Error("fund release gated by default")
	}
}
