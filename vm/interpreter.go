// Copyright The Raft-VM Authors
// This file is part of Raft-VM.
//
// Raft-VM is free software: you can redistribute it and/or modify it under
// the terms of the GNU Lesser General Public License as published by the
// Free Software Foundation, either version 3 of the License, or (at your
// option) any later version.

package vm

// dispatch executes exactly one instruction against v's ExecutionContext
// and Heap. It is the sole place instruction contracts are implemented;
// ExecutionContext.Step calls it and handles the IP auto-advance.
func (v *VM) dispatch(instr Instruction) error {
	ctx := v.ctx
	switch instr.Op {

	case OpPushConst:
		return v.pushValue(instr.Const)

	case OpPop:
		_, err := v.popValue("Pop")
		return err

	case OpDup:
		top, err := ctx.stackPeek("Dup")
		if err != nil {
			return err
		}
		return v.pushValue(top)

	case OpPeek:
		top, err := ctx.stackPeek("Peek")
		if err != nil {
			return err
		}
		return v.pushValue(top)

	case OpSwap:
		n := len(ctx.Stack)
		if n < 2 {
			return stackUnderflowFor("Swap")
		}
		ctx.Stack[n-1], ctx.Stack[n-2] = ctx.Stack[n-2], ctx.Stack[n-1]
		return nil

	case OpStoreVar:
		val, err := v.popValue("StoreVar")
		if err != nil {
			return err
		}
		if old, exists := ctx.Locals[instr.Arg]; exists {
			if addr, ok := old.AsReference(); ok {
				if err := v.heap.DecrementRef(addr); err != nil {
					return err
				}
			}
		}
		if addr, ok := val.AsReference(); ok {
			if err := v.heap.IncrementRef(addr); err != nil {
				return err
			}
		}
		ctx.Locals[instr.Arg] = val
		return nil

	case OpLoadVar:
		val, ok := ctx.Locals[instr.Arg]
		if !ok {
			return variableNotFound(instr.Arg)
		}
		return v.pushValue(val)

	case OpAdd:
		return v.binaryArith("Add", Value.Add)
	case OpSub:
		return v.binaryArith("Sub", Value.Sub)
	case OpMul:
		return v.binaryArith("Mul", Value.Mul)
	case OpDiv:
		return v.binaryArith("Div", Value.Div)
	case OpMod:
		return v.binaryArith("Mod", Value.Mod)
	case OpExp:
		return v.binaryArith("Exp", Value.Exp)

	case OpNeg:
		a, err := v.popValue("Neg")
		if err != nil {
			return err
		}
		result, err := a.Neg()
		if err != nil {
			return err
		}
		return v.pushValue(result)

	case OpJump:
		t := instr.Addr()
		if t > len(ctx.Bytecode) {
			return ErrExecutionOutOfBounds
		}
		ctx.IP = t
		return nil

	case OpJumpIfFalse:
		val, err := v.popValue("JumpIfFalse")
		if err != nil {
			return err
		}
		b, ok := val.AsBool()
		if !ok {
			return typeMismatch("JumpIfFalse")
		}
		if !b {
			t := instr.Addr()
			if t > len(ctx.Bytecode) {
				return ErrExecutionOutOfBounds
			}
			ctx.IP = t
		}
		return nil

	case OpCall:
		t := instr.Addr()
		if t >= len(ctx.Bytecode) {
			return ErrExecutionOutOfBounds
		}
		ctx.CallStack = append(ctx.CallStack, ctx.IP)
		ctx.IP = t
		return nil

	case OpReturn:
		n := len(ctx.CallStack)
		if n == 0 {
			return stackUnderflowFor("Return")
		}
		ret := ctx.CallStack[n-1]
		ctx.CallStack = ctx.CallStack[:n-1]
		ctx.IP = ret
		return nil

	case OpSpawnActor:
		return v.spawnChild(instr, false)

	case OpSpawnSupervisor:
		return v.spawnChild(instr, true)

	case OpSendMessage:
		return v.sendMessage()

	case OpReceiveMessage:
		return v.receiveMessage()

	case OpSetStrategy:
		return v.dispatchSetStrategy(instr.Arg)

	case OpRestartChild:
		return v.dispatchRestartChild(instr.Arg)

	case OpLoadNative:
		return v.dispatchLoadNative(instr.Arg)

	case OpCallNative:
		return v.dispatchCallNative(instr.Arg)

	default:
		return typeMismatch("unimplemented opcode")
	}
}

func (v *VM) binaryArith(site string, op func(Value, Value) (Value, error)) error {
	if len(v.ctx.Stack) < 2 {
		return stackUnderflowFor(site)
	}
	b, err := v.popValue(site)
	if err != nil {
		return err
	}
	a, err := v.popValue(site)
	if err != nil {
		return err
	}
	result, err := op(a, b)
	if err != nil {
		return err
	}
	return v.pushValue(result)
}

func (v *VM) spawnChild(instr Instruction, supervisor bool) error {
	entry := instr.Addr()
	if entry >= len(v.ctx.Bytecode) {
		return ErrExecutionOutOfBounds
	}
	childCode := cloneInstructions(v.ctx.Bytecode)
	child, sender := NewWithOptions(childCode, nil, v.childOptions())
	child.ctx.IP = entry

	var obj HeapObject
	if supervisor {
		obj = &SupervisorObject{VM: child, Sender: sender, Strategy: v.defaultStrategy}
	} else {
		obj = &ActorObject{VM: child, Sender: sender}
	}
	addr := v.heap.Allocate(obj)
	return v.pushValue(Ref(addr))
}

func (v *VM) senderFor(obj HeapObject) (*MailboxSender, *VM, bool) {
	switch o := obj.(type) {
	case *ActorObject:
		return o.Sender, o.VM, true
	case *SupervisorObject:
		return o.Sender, o.VM, true
	default:
		return nil, nil, false
	}
}

// sendMessage implements SendMessage per spec §4.D, resolved per
// SPEC_FULL.md §5 (copy-at-send): an Array or String message is copied
// into the recipient's own heap since each VM's heap is private (an
// Array's elements are copied as they are, so a Reference element keeps
// its address from the sender's heap); scalars pass
// through unchanged. Actor/Supervisor/Module/NativeFunction references
// are rejected since a child VM's heap cannot host another VM's control
// objects.
func (v *VM) sendMessage() error {
	actorVal, err := v.popValue("SendMessage")
	if err != nil {
		return err
	}
	msgVal, err := v.popValue("SendMessage")
	if err != nil {
		return err
	}

	actorAddr, ok := actorVal.AsReference()
	if !ok {
		return ErrInvalidReference
	}
	obj, err := v.heap.Get(actorAddr)
	if err != nil {
		return err
	}
	sender, childVM, ok := v.senderFor(obj)
	if !ok {
		return ErrInvalidReference
	}

	outgoing, err := v.prepareOutgoing(msgVal, childVM.heap)
	if err != nil {
		return err
	}

	if err := sender.Send(outgoing); err != nil {
		return &ChannelSendError{Err: err, Value: outgoing}
	}

	return v.pushValue(actorVal)
}

// prepareOutgoing produces the Value actually placed on the wire, copying
// an Array or String payload one level deep into dst and leaving the channel slot's
// reference count at one (see ownership rules, spec §4.D).
func (v *VM) prepareOutgoing(msg Value, dst *Heap) (Value, error) {
	addr, ok := msg.AsReference()
	if !ok {
		return msg, nil
	}
	obj, err := v.heap.Get(addr)
	if err != nil {
		return Value{}, err
	}
	var copied HeapObject
	switch o := obj.(type) {
	case *ArrayObject:
		elems := make([]Value, len(o.Elements))
		copy(elems, o.Elements)
		copied = &ArrayObject{Elements: elems}
	case *StringObject:
		copied = &StringObject{Text: o.Text}
	default:
		return Value{}, ErrInvalidReference
	}
	newAddr := dst.Allocate(copied)
	if err := dst.IncrementRef(newAddr); err != nil {
		return Value{}, err
	}
	return Ref(newAddr), nil
}

// receiveMessage implements ReceiveMessage per spec §4.D: the sender's
// channel-slot increment is undone before the ordinary push re-increments,
// for a net-zero change in the receiving heap's bookkeeping.
func (v *VM) receiveMessage() error {
	v.state = StateSuspendedAwaitingMessage
	val, err := v.mailbox.Receive()
	if err != nil {
		return err
	}
	v.state = StateRunning
	if addr, ok := val.AsReference(); ok {
		if err := v.heap.DecrementRef(addr); err != nil {
			return err
		}
	}
	return v.pushValue(val)
}

func (v *VM) resolveSupervisor(val Value) (Address, *SupervisorObject, error) {
	addr, ok := val.AsReference()
	if !ok {
		return 0, nil, ErrInvalidReference
	}
	obj, err := v.heap.Get(addr)
	if err != nil {
		return 0, nil, err
	}
	sup, ok := obj.(*SupervisorObject)
	if !ok {
		return 0, nil, ErrInvalidReference
	}
	return addr, sup, nil
}

func (v *VM) dispatchSetStrategy(code uint64) error {
	supVal, err := v.popValue("SetStrategy")
	if err != nil {
		return err
	}
	_, sup, err := v.resolveSupervisor(supVal)
	if err != nil {
		return err
	}
	sup.Strategy = RestartStrategy(code)
	return v.pushValue(supVal)
}

func (v *VM) dispatchRestartChild(index uint64) error {
	supVal, err := v.popValue("RestartChild")
	if err != nil {
		return err
	}
	_, sup, err := v.resolveSupervisor(supVal)
	if err != nil {
		return err
	}
	if err := RestartSupervisorChild(sup, index); err != nil {
		return err
	}
	return v.pushValue(supVal)
}

// dispatchLoadNative pushes a Reference to the builtin NativeFunction at
// the given index (see vm/natives.go's LoadNative index order).
func (v *VM) dispatchLoadNative(index uint64) error {
	addr, ok := v.natives[index]
	if !ok {
		return nativeNotFound(index)
	}
	return v.pushValue(Ref(addr))
}

// dispatchCallNative implements CallNative(arity): pop the native
// reference pushed by a preceding LoadNative, then pop arity arguments
// (pushed in call order, so they come off the stack in reverse), invoke
// the function, and push its result. Consuming the native reference on
// every call keeps its refcount discipline identical to every other
// heap object's: a caller that wants to call it again pushes a fresh
// reference with another LoadNative.
func (v *VM) dispatchCallNative(arity uint64) error {
	fnVal, err := v.popValue("CallNative")
	if err != nil {
		return err
	}
	addr, ok := fnVal.AsReference()
	if !ok {
		return typeMismatch("CallNative: expected a NativeFunction reference")
	}
	obj, err := v.heap.Get(addr)
	if err != nil {
		return err
	}
	nf, ok := obj.(*NativeFunctionObject)
	if !ok {
		return typeMismatch("CallNative: expected a NativeFunction reference")
	}

	args := make([]Value, arity)
	for i := int(arity) - 1; i >= 0; i-- {
		val, err := v.popValue("CallNative")
		if err != nil {
			return err
		}
		args[i] = val
	}

	result, err := nf.Fn(args)
	if err != nil {
		return err
	}
	return v.pushValue(result)
}
