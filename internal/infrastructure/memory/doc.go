// Package memory implementa los repositorios en memoria del proceso.
//
// Cada dulce tiene su propio mutex: compra y reposición sólo bloquean el registro
// afectado mientras comprueban y mutan la cantidad. El mutex del mapa se toma de
// forma breve para localizar el registro o para cambios de estructura (alta, baja,
// renombrado), y siempre antes que el del registro.
package memory
