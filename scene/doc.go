// Package scene models the host application's character objects.
//
// A Scene holds named Characters, each exposing a fixed set of shape key
// parameters with values in [0, 1]. Characters implement morph.Target, so
// the applier can reset and set them. Objects are looked up by name prefix,
// matching how a host duplicates objects ("mb_male", "mb_male.001").
//
// A scene backed by a storage.CharacterRepository persists each character's
// parameter state so it can be inspected outside the bridge process.
package scene
