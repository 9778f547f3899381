package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (same value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device
// -----------------------------------------------------------------------------

// Protocol on the USB CDC console; DHT11 on GP5.
const cfgPico = `{
  "serial":  { "transport": "usb", "baud": 115200 },
  "frame":   { "capacity": 512 },
  "sensors": { "interval_ms": 2000, "climate": "dht11" },
  "pins": {
    "red": 2, "green": 3, "blue": 4,
    "dht": 5, "button": 6, "servo": 7, "piezo": 8, "light": 26,
    "lcd_rs": 12, "lcd_en": 13, "lcd_d": [14, 15, 16, 17]
  },
  "display": { "cols": 16, "rows": 2, "splash": "ARTIE V2.2", "waiting": "WAITING PC...", "settle_ms": 1000 },
  "verbose": false
}`

// Protocol on UART0 (GP0/GP1) so the USB console is free for logs; AHT20 on
// I2C0 (GP20/GP21).
const cfgPicoUART = `{
  "serial":  { "transport": "uart0", "baud": 115200, "tx": 0, "rx": 1 },
  "sensors": { "interval_ms": 2000, "climate": "aht20", "i2c": "i2c0" },
  "pins":    { "sda": 20, "scl": 21 },
  "verbose": true
}`

var embeddedConfigs = map[string][]byte{
	"pico":      []byte(cfgPico),
	"pico-uart": []byte(cfgPicoUART),
}
