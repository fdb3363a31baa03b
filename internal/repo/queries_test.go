package repo

import "testing"

func TestQueryURLEncodesQuery(t *testing.T) {
	client := NewInfluxClient("10.0.0.5", 8086, "telegraf", InfluxOptions{})
	got := client.QueryURL("select * from bond_slave where host='web01'")
	want := "http://10.0.0.5:8086/query?db=telegraf&q=select+%2A+from+bond_slave+where+host%3D%27web01%27"
	if got != want {
		t.Fatalf("unexpected url:\n got %s\nwant %s", got, want)
	}
}

func TestQuoteStringEscapes(t *testing.T) {
	if got := QuoteString(`o'brien\x`); got != `'o\'brien\\x'` {
		t.Fatalf("unexpected literal: %s", got)
	}
}

func TestSlaveQueryWindow(t *testing.T) {
	got := SlaveQuery("db01", "5m")
	want := "select * from bond_slave where host='db01' and time > now() - 5m group by bond"
	if got != want {
		t.Fatalf("unexpected query: %s", got)
	}
}
