//go:build !pico_uart

package config

// SelectedDevice is the embedded config the firmware boots with. Build with
// -tags pico_uart to select the UART board.
const SelectedDevice = "pico"
