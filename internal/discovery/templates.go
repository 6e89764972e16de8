package discovery

import "fmt"

// collectd's write_mqtt payloads look like "<time>:<value>[:<value>...]",
// NUL terminated.
const (
	defaultCast = " | float(0.0)"

	uptimeTemplate = "{%- set now_ts = now() %}\n" +
		"{%- set now_ts = now_ts.replace(microsecond=0, second=0) %}\n" +
		"{{ (value.split(':')[1].split('\x00')[0]|int // 60 * 60) | string | as_timedelta  * -1 + now_ts }}"
)

// valueTemplate selects the i-th field of a collectd payload.
func valueTemplate(i int) string {
	return valueTemplateWith(i, defaultCast, "")
}

func valueTemplateWith(i int, cast, transform string) string {
	return fmt.Sprintf("{{ value.split(':')[%d].split('\x00')[0] %s %s }}", i, cast, transform)
}
