package store

import (
	"context"
	"testing"
)

func TestParsePastedRows(t *testing.T) {
	text := "Modeling\tLobby model\t2\t500\r\n" +
		"Rendering\tFinal renders\t1\t300\n" +
		"\n" +
		"Revisions\n" +
		"Rush fee\tWeekend work\tabc\t-50\n" +
		"\tno name means skip\t1\t1\n"

	rows := ParsePastedRows(text)
	if len(rows) != 4 {
		t.Fatalf("parsed %d rows, want 4", len(rows))
	}

	if rows[0].Name != "Modeling" || rows[0].Quantity != 2 || rows[0].UnitPrice != 500 {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Description != "Final renders" || rows[1].UnitPrice != 300 {
		t.Errorf("row 1 = %+v", rows[1])
	}
	// name-only row: quantity defaults to 1, price to 0
	if rows[2].Name != "Revisions" || rows[2].Quantity != 1 || rows[2].UnitPrice != 0 {
		t.Errorf("row 2 = %+v", rows[2])
	}
	// invalid numerics fall back to defaults
	if rows[3].Quantity != 1 || rows[3].UnitPrice != 0 {
		t.Errorf("row 3 = %+v", rows[3])
	}
}

func TestPendingBufferLifecycle(t *testing.T) {
	st, _ := seedStore(t)

	n := st.PastePending("p1", "Extra chairs\tClient request\t4\t75\nPlants\t\t2\t30")
	if n != 2 {
		t.Fatalf("pasted %d rows, want 2", n)
	}
	if got := st.PendingRows("p1"); len(got) != 2 {
		t.Fatalf("pending buffer holds %d rows, want 2", len(got))
	}

	// rows are buffered, not yet billing items
	if p := st.GetProjectByID("p1"); len(p.BillingItems) != 3 {
		t.Fatalf("paste created billing items prematurely")
	}

	res := st.SavePendingRow(context.Background(), "p1", 0)
	if !res.Success {
		t.Fatalf("save pending row failed: %+v", res)
	}
	if got := st.PendingRows("p1"); len(got) != 1 || got[0].Name != "Plants" {
		t.Errorf("buffer after single save = %v", got)
	}
	if p := st.GetProjectByID("p1"); len(p.BillingItems) != 4 {
		t.Errorf("billing items = %d, want 4", len(p.BillingItems))
	}

	res = st.SaveAllPending(context.Background(), "p1")
	if !res.Success {
		t.Fatalf("save all failed: %+v", res)
	}
	if got := st.PendingRows("p1"); len(got) != 0 {
		t.Errorf("buffer not drained: %v", got)
	}
	if p := st.GetProjectByID("p1"); len(p.BillingItems) != 5 {
		t.Errorf("billing items = %d, want 5", len(p.BillingItems))
	}

	saved := st.GetProjectByID("p1").BillingItems[3]
	if saved.TotalPrice != 300 {
		t.Errorf("saved row total = %v, want 300 (4 x 75)", saved.TotalPrice)
	}
}

func TestSaveAllKeepsFailedRowsBuffered(t *testing.T) {
	st, fake := seedStore(t)

	st.PastePending("p1", "Good row\t\t1\t10\nBad row\t\t1\t10")
	fake.FailOn["CreateBillingItem"] = errTestBackend

	res := st.SaveAllPending(context.Background(), "p1")
	if res.Success {
		t.Fatal("expected save-all failure")
	}
	if got := st.PendingRows("p1"); len(got) != 2 {
		t.Errorf("failed rows dropped from buffer: %v", got)
	}

	delete(fake.FailOn, "CreateBillingItem")
	if res := st.SaveAllPending(context.Background(), "p1"); !res.Success {
		t.Fatalf("retry failed: %+v", res)
	}
	if got := st.PendingRows("p1"); len(got) != 0 {
		t.Errorf("buffer not drained after retry: %v", got)
	}
}

func TestDiscardPending(t *testing.T) {
	st, _ := seedStore(t)

	st.PastePending("p1", "Row\t\t1\t1")
	st.DiscardPending("p1")
	if got := st.PendingRows("p1"); len(got) != 0 {
		t.Errorf("discard left %d rows", len(got))
	}
}
