// Package uart is a software rendition of a UART with a block transfer
// engine. A Port takes bytes from any io.Reader, typically a serial port
// opened with OpenSerial, and delivers them into a receive buffer the way
// interrupt and DMA reception would, raising completion and fault
// callbacks on a Handler.
package uart
